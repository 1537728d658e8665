package cmd

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/qri-io/h5diff/internal/dlogger"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	formatText = "text"
	formatJSON = "json"

	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

// settings are the resolved flag, environment & config file values for a
// single run
type settings struct {
	Format     string `mapstructure:"format"`
	Color      string `mapstructure:"color"`
	Stats      bool   `mapstructure:"stats"`
	RootStatus bool   `mapstructure:"root-status"`
	LogLevel   string `mapstructure:"log-level"`
}

func addFlags(flags *pflag.FlagSet) {
	flags.String("format", formatText, "report format, one of text|json")
	flags.String("color", colorAuto, "color text reports, one of auto|always|never")
	flags.Bool("stats", false, "print summary statistics after the report")
	flags.Bool("root-status", false, "exit status only reflects differences found at the root level")
	flags.String("log-level", dlogger.LogLevelWarn, "diagnostic log level written to stderr: debug|info|warn|error|none")
	flags.String("config", "", "config file (default is ./h5diff.yaml or $HOME/.h5diff/h5diff.yaml)")
}

// loadSettings resolves settings in order of precedence: flags, H5DIFF_*
// environment variables, config file, defaults
func loadSettings(fs afero.Fs, flags *pflag.FlagSet) (*settings, error) {
	v := viper.New()
	v.SetFs(fs)
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	v.SetEnvPrefix("h5diff")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", cfgFile)
		}
	} else {
		v.SetConfigName("h5diff")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.h5diff")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "reading config file")
			}
		}
	}

	s := &settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, errors.Wrap(err, "decoding settings")
	}
	return s, s.validate()
}

func (s *settings) validate() error {
	switch s.Format {
	case formatText, formatJSON:
	default:
		return &usageError{errors.Errorf("invalid format %q", s.Format)}
	}
	switch s.Color {
	case colorAuto, colorAlways, colorNever:
	default:
		return &usageError{errors.Errorf("invalid color mode %q", s.Color)}
	}
	if _, err := dlogger.GetLogger(s.LogLevel); err != nil {
		return &usageError{errors.Wrapf(err, "invalid log level %q", s.LogLevel)}
	}
	return nil
}
