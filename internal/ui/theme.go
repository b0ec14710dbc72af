// Package ui holds the terminal theming shared by every screen. Themes
// are YAML files mapping color names to hex, rgb() or named values.
package ui

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"gopkg.in/yaml.v3"
)

// ThemeConfig is a theme as loaded from YAML.
type ThemeConfig struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Author      string            `yaml:"author"`
	Colors      map[string]string `yaml:"colors"`
}

// Theme is a processed theme with resolved tcell colors.
type Theme struct {
	Name        string
	Description string
	Author      string
	colors      map[string]tcell.Color
}

// DefaultTheme is used when no theme file exists.
func DefaultTheme() *Theme {
	return &Theme{
		Name: "default",
		colors: map[string]tcell.Color{
			"background":       tcell.NewRGBColor(24, 24, 32),
			"background-light": tcell.NewRGBColor(40, 40, 52),
			"primary":          tcell.NewRGBColor(130, 170, 255),
			"accent":           tcell.NewRGBColor(255, 160, 80),
			"text":             tcell.NewRGBColor(220, 220, 228),
			"text-muted":       tcell.NewRGBColor(140, 140, 152),
			"border":           tcell.NewRGBColor(70, 70, 88),
			"error":            tcell.NewRGBColor(235, 90, 90),
			"success":          tcell.NewRGBColor(120, 200, 120),
			"button-active":    tcell.NewRGBColor(130, 170, 255),
			"button-text":      tcell.NewRGBColor(24, 24, 32),
		},
	}
}

// LoadTheme loads a theme from a YAML file.
func LoadTheme(themePath string) (*Theme, error) {
	data, err := os.ReadFile(themePath)
	if err != nil {
		return nil, fmt.Errorf("read theme file: %w", err)
	}

	var config ThemeConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse theme yaml: %w", err)
	}

	theme := &Theme{
		Name:        config.Name,
		Description: config.Description,
		Author:      config.Author,
		colors:      make(map[string]tcell.Color),
	}
	for key, value := range config.Colors {
		color, err := parseColor(value)
		if err != nil {
			return nil, fmt.Errorf("parse color %q: %w", key, err)
		}
		theme.colors[key] = color
	}
	return theme, nil
}

// LoadThemeFromDir loads <dir>/<name>.yaml, falling back to the
// built-in default when the file does not exist.
func LoadThemeFromDir(dir, name string) (*Theme, error) {
	themePath := filepath.Join(dir, name+".yaml")
	theme, err := LoadTheme(themePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultTheme(), nil
		}
		return nil, err
	}
	return theme, nil
}

// GetColor returns a color by name, falling back to the default theme
// and then to white.
func (t *Theme) GetColor(name string) tcell.Color {
	if color, ok := t.colors[name]; ok {
		return color
	}
	if color, ok := DefaultTheme().colors[name]; ok {
		return color
	}
	return tcell.ColorWhite
}

// FormColors bundles the colors every form screen sets.
func (t *Theme) FormColors() (bg, fieldBg, buttonBg, buttonText, fieldText tcell.Color) {
	return t.GetColor("background"),
		t.GetColor("background-light"),
		t.GetColor("button-active"),
		t.GetColor("button-text"),
		t.GetColor("text")
}

// parseColor accepts "#RRGGBB", "#RGB", "rgb(r, g, b)" and tcell named
// colors.
func parseColor(value string) (tcell.Color, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "#") {
		return parseHexColor(value)
	}
	if strings.HasPrefix(value, "rgb(") && strings.HasSuffix(value, ")") {
		return parseRGBFunction(value)
	}
	if color, ok := tcell.ColorNames[strings.ToLower(value)]; ok {
		return color, nil
	}
	return tcell.ColorWhite, fmt.Errorf("unknown color %q", value)
}

func parseHexColor(hex string) (tcell.Color, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return tcell.ColorWhite, fmt.Errorf("invalid hex color %q", hex)
	}
	r, err := strconv.ParseInt(hex[0:2], 16, 32)
	if err != nil {
		return tcell.ColorWhite, err
	}
	g, err := strconv.ParseInt(hex[2:4], 16, 32)
	if err != nil {
		return tcell.ColorWhite, err
	}
	b, err := strconv.ParseInt(hex[4:6], 16, 32)
	if err != nil {
		return tcell.ColorWhite, err
	}
	return tcell.NewRGBColor(int32(r), int32(g), int32(b)), nil
}

func parseRGBFunction(s string) (tcell.Color, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "rgb("), ")")
	parts := strings.Split(inner, ",")
	if len(parts) != 3 {
		return tcell.ColorWhite, fmt.Errorf("invalid rgb() color %q", s)
	}
	vals := make([]int32, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 255 {
			return tcell.ColorWhite, fmt.Errorf("invalid rgb() component %q", p)
		}
		vals[i] = int32(n)
	}
	return tcell.NewRGBColor(vals[0], vals[1], vals[2]), nil
}
