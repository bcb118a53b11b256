package conf

import "github.com/spf13/viper"

// setDefaultConfig registers viper defaults for every Settings field, so a
// freshly created config.yaml only needs to mention what the user is
// overriding.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("compile.defaultsamplerate", 44100)

	viper.SetDefault("render.binary", "scsynth")
	viper.SetDefault("render.headerformat", "aiff")
	viper.SetDefault("render.sampleformat", "int24")
	viper.SetDefault("render.outputdir", "./render-out")
	viper.SetDefault("render.serveroptions", []string{})

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.filepath", "logs/scsess.log")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.dsn", "")

	viper.SetDefault("notify.mqtt.enabled", false)
	viper.SetDefault("notify.mqtt.broker", "")
	viper.SetDefault("notify.mqtt.topic", "scsess/compile")
	viper.SetDefault("notify.webhook.urls", []string{})

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.listen", ":9090")
}
