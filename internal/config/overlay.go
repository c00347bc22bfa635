// config/overlay.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type TemplatesFile struct {
	Templates []Template `yaml:"templates"`
}

// OverlayTemplates replaces the template catalog with the one in
// templatesPath, keeping its order.
func OverlayTemplates(cfg *Config, templatesPath string) error {
	b, err := os.ReadFile(templatesPath)
	if err != nil {
		// Missing templates file should not kill startup
		return nil
	}

	var tf TemplatesFile
	if err := yaml.Unmarshal(b, &tf); err != nil {
		return err
	}

	if len(tf.Templates) > 0 {
		cfg.Templates = tf.Templates
	}
	return nil
}
