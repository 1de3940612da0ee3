package config

import (
	"errors"
	"os"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// SectionTemplates lists the rows seeded for every new customer.
type SectionTemplates struct {
	Documents   []string `mapstructure:"documents"`
	Checklist   []string `mapstructure:"checklist"`
	Inspections []string `mapstructure:"inspections"`
}

func DefaultSectionTemplates() SectionTemplates {
	return SectionTemplates{
		Documents: []string{
			"Aadhaar Card",
			"Light Bill",
			"7/12 & Index 2",
			"Undertaking Letter",
			"Notary",
			"Site Photos",
			"Roof Layout",
		},
		Checklist: []string{
			"New Connection",
			"Email & Mobile Update",
			"Load Extension",
			"PV Application",
			"Net Meter Application",
			"Sanction Approval",
			"Jansamarth Documentation",
		},
		Inspections: []string{
			"Work Completion Report",
			"Site Inspection",
			"Quality Check",
			"Safety Compliance",
		},
	}
}

// Clone returns a deep copy so callers may not mutate the held value.
func (t SectionTemplates) Clone() SectionTemplates {
	return SectionTemplates{
		Documents:   append([]string(nil), t.Documents...),
		Checklist:   append([]string(nil), t.Checklist...),
		Inspections: append([]string(nil), t.Inspections...),
	}
}

type TemplateConfigHolder struct {
	current atomic.Value // holds SectionTemplates
	log     *zap.Logger
}

// NewTemplateConfigHolder reads templates.yml from the usual config paths and
// watches it for changes. A missing file falls back to the built-in templates.
func NewTemplateConfigHolder(log *zap.Logger) (*TemplateConfigHolder, error) {
	paths := []string{
		"/var/lib/solarflow/config", // Volume-mounted config
		"/etc/solarflow",            // System config
		".",                         // Current directory (dev mode)
	}
	if dir := strings.TrimSpace(os.Getenv("SOLARFLOW_CONFIG_DIR")); dir != "" {
		paths = append([]string{dir}, paths...)
	}
	return LoadTemplateConfig(log, paths...)
}

func LoadTemplateConfig(log *zap.Logger, paths ...string) (*TemplateConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	v := viper.New()

	v.SetConfigName("templates")
	v.SetConfigType("yml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	defaults := DefaultSectionTemplates()
	v.SetDefault("templates.documents", defaults.Documents)
	v.SetDefault("templates.checklist", defaults.Checklist)
	v.SetDefault("templates.inspections", defaults.Inspections)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		watch = false
	}

	var cfg SectionTemplates
	if err := v.UnmarshalKey("templates", &cfg); err != nil {
		return nil, err
	}
	if err := validateSectionTemplates(cfg); err != nil {
		return nil, err
	}

	holder := &TemplateConfigHolder{log: log.Named("config.templates")}
	holder.current.Store(cfg)

	if watch {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			holder.reload(v, e.Name)
		})
	}

	return holder, nil
}

func (h *TemplateConfigHolder) reload(v *viper.Viper, source string) bool {
	var updated SectionTemplates
	if err := v.UnmarshalKey("templates", &updated); err != nil {
		h.log.Warn("template reload failed", zap.String("file", source), zap.Error(err))
		return false
	}
	if err := validateSectionTemplates(updated); err != nil {
		h.log.Warn("invalid template config ignored", zap.String("file", source), zap.Error(err))
		return false
	}
	h.current.Store(updated)
	h.log.Info("templates reloaded", zap.String("file", source))
	return true
}

func (h *TemplateConfigHolder) Get() SectionTemplates {
	return h.current.Load().(SectionTemplates).Clone()
}

func validateSectionTemplates(cfg SectionTemplates) error {
	if len(cfg.Documents) == 0 {
		return errors.New("templates.documents cannot be empty")
	}
	if len(cfg.Checklist) == 0 {
		return errors.New("templates.checklist cannot be empty")
	}
	if len(cfg.Inspections) == 0 {
		return errors.New("templates.inspections cannot be empty")
	}
	for _, group := range [][]string{cfg.Documents, cfg.Checklist, cfg.Inspections} {
		for _, name := range group {
			if strings.TrimSpace(name) == "" {
				return errors.New("template names cannot be blank")
			}
		}
	}
	return nil
}
