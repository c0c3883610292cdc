// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("useragent", "tinyping-game/1.0 (local)")

	v.SetDefault("wiki.baseurl", "https://catchteenieping.fandom.com/api.php")
	v.SetDefault("wiki.localizedbaseurl", "https://catchteenieping.fandom.com/ko/api.php")
	v.SetDefault("wiki.timeout", 30*time.Second)
	v.SetDefault("wiki.ratelimit", 5.0)
	v.SetDefault("wiki.seasonsearch", "List of Teeniepings/Season")
	v.SetDefault("wiki.seasonsearchlimit", 50)
	v.SetDefault("wiki.category", "Category:Teeniepings")
	v.SetDefault("wiki.categorylimit", 500)
	v.SetDefault("wiki.localizedsearchlimit", 5)

	v.SetDefault("search.endpoint", "https://www.google.com/search")
	v.SetDefault("search.language", "ko")
	v.SetDefault("search.keyword", "티니핑")
	v.SetDefault("search.pacedelay", 200*time.Millisecond)
	v.SetDefault("search.timeout", 30*time.Second)

	v.SetDefault("download.referer", "https://www.google.com/")
	v.SetDefault("download.timeout", 60*time.Second)

	v.SetDefault("harvest.target", 100)
	v.SetDefault("harvest.maxnames", 50)
	v.SetDefault("harvest.outputdir", ".")
	v.SetDefault("harvest.imagesdir", "images")
	v.SetDefault("harvest.datadir", "data")
	v.SetDefault("harvest.manifestfile", "mapping.json")
	v.SetDefault("harvest.source", "google")
	v.SetDefault("harvest.seed", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
	v.SetDefault("log.maxsizemb", 10)
	v.SetDefault("log.maxbackups", 3)
	v.SetDefault("log.maxagedays", 28)

	v.SetDefault("metrics.pushgateway", "")
	v.SetDefault("metrics.job", "pingharvest")
}
