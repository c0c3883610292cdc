// env.go - Environment variable configuration for pingharvest
package conf

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PINGHARVEST_HARVEST_TARGET.
const EnvPrefix = "PINGHARVEST"

// bindEnv maps nested config keys to PINGHARVEST_SECTION_KEY variables.
// Only keys that have a default are picked up by Unmarshal.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}
