package config

import (
	"errors"
	"io/fs"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings holds runtime settings for confcascade.
type Settings struct {
	ControlPlane ControlPlaneSettings `mapstructure:"controlplane"`
	Store        StoreSettings        `mapstructure:"store"`
	Log          LogSettings          `mapstructure:"log"`
	Workspace    WorkspaceSettings    `mapstructure:"workspace"`
	Watch        WatchSettings        `mapstructure:"watch"`
}

// ControlPlaneSettings locates the remote organization directory.
type ControlPlaneSettings struct {
	APIURL string `mapstructure:"api_url"`
	AppURL string `mapstructure:"app_url"`
}

// StoreSettings selects the selection-store backend.
type StoreSettings struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type WorkspaceSettings struct {
	Dirs []string `mapstructure:"dirs"`
}

type WatchSettings struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() Settings {
	return Settings{
		ControlPlane: ControlPlaneSettings{
			APIURL: "https://api.confcascade.dev",
			AppURL: "https://hub.confcascade.dev",
		},
		Store: StoreSettings{Backend: "file"},
		Log:   LogSettings{Level: "warn", Format: "text"},
		Watch: WatchSettings{Debounce: 250 * time.Millisecond},
	}
}

// LoadSettings reads settings from path (if it exists) and environment
// variables. Environment variables use the prefix "CONFCASCADE" and the
// dot character in keys is replaced by an underscore. For example,
// "store.backend" becomes "CONFCASCADE_STORE_BACKEND".
func LoadSettings(path string) (Settings, error) {
	cfg := DefaultSettings()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CONFCASCADE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, &cfg)
	if path != "" {
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return Settings{}, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts, tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
