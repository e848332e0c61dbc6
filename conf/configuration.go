package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RaveNoX/go-jsoncommentstrip"
	"github.com/ababil/ababil/log"
	"github.com/go-viper/encoding/ini"
	"github.com/hashicorp/go-multierror"
	"github.com/kr/pretty"
	"github.com/spf13/viper"
)

type configOptions struct {
	ConfigFile string
	LogLevel   string
	HTTPClient httpClientOptions
}

type httpClientOptions struct {
	// Timeout bounds a whole exchange. Zero means no timeout.
	Timeout time.Duration
	// MaxRedirects is the number of redirects followed before failing.
	// Zero disables following redirects.
	MaxRedirects int
}

var Server = &configOptions{}

// Load reads the current viper state into Server and applies the log level.
func Load() error {
	opts := &configOptions{}
	if err := viper.Unmarshal(opts); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if err := validate(opts); err != nil {
		return err
	}

	opts.ConfigFile = viper.ConfigFileUsed()
	Server = opts
	log.SetLevelString(Server.LogLevel)
	if log.IsGreaterOrEqualTo(log.LevelDebug) {
		log.Debug(pretty.Sprintf("Loaded configuration: %# v", Server))
	}
	return nil
}

// validate reports every invalid option at once.
func validate(opts *configOptions) error {
	var errs *multierror.Error
	if opts.HTTPClient.Timeout < 0 {
		errs = multierror.Append(errs, fmt.Errorf("invalid HTTPClient.Timeout %s: must not be negative", opts.HTTPClient.Timeout))
	}
	if opts.HTTPClient.MaxRedirects < 0 {
		errs = multierror.Append(errs, fmt.Errorf("invalid HTTPClient.MaxRedirects %d: must not be negative", opts.HTTPClient.MaxRedirects))
	}
	return errs.ErrorOrNil()
}

// InitConfig enables environment overrides, e.g. ABABIL_LOGLEVEL or
// ABABIL_HTTPCLIENT_TIMEOUT, and reads cfgFile if given. When cfgFile is
// empty, ABABIL_CONFIGFILE is used instead. The format follows the file
// extension: toml, yaml, ini, or json (comments allowed).
func InitConfig(cfgFile string) error {
	codecs := viper.NewCodecRegistry()
	_ = codecs.RegisterCodec("ini", ini.Codec{})
	viper.SetOptions(viper.WithCodecRegistry(codecs))

	viper.SetEnvPrefix("ABABIL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile == "" {
		cfgFile = viper.GetString("configfile")
	}
	if cfgFile == "" {
		return nil
	}
	viper.SetConfigFile(cfgFile)
	var err error
	if strings.EqualFold(filepath.Ext(cfgFile), ".json") {
		err = readJSONConfig(cfgFile)
	} else {
		err = viper.ReadInConfig()
	}
	if err != nil {
		return fmt.Errorf("reading config file %q: %w", cfgFile, err)
	}
	return nil
}

func readJSONConfig(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return viper.ReadConfig(jsoncommentstrip.NewReader(f))
}

func setViperDefaults() {
	viper.SetDefault("configfile", "")
	viper.SetDefault("loglevel", "error")
	viper.SetDefault("httpclient.timeout", 0)
	viper.SetDefault("httpclient.maxredirects", 10)
}

func init() {
	setViperDefaults()
	_ = viper.Unmarshal(Server)
}
