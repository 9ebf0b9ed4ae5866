package views

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed chrome.yaml
var defaultChrome []byte

// Link is a navigation target. External links open in a new tab.
type Link struct {
	Label    string `yaml:"label"`
	URL      string `yaml:"url"`
	External bool   `yaml:"external"`
	Icon     string `yaml:"icon,omitempty"`
	Track    string `yaml:"track,omitempty"`
}

// Logo is a linked brand image.
type Logo struct {
	Src    string `yaml:"src"`
	Alt    string `yaml:"alt"`
	Href   string `yaml:"href"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Chrome is the static page furniture: header, footer and the call to action
// above the footer.
type Chrome struct {
	Header struct {
		Logo Logo   `yaml:"logo"`
		Nav  []Link `yaml:"nav"`
		CTA  Link   `yaml:"cta"`
	} `yaml:"header"`

	Footer struct {
		Logo      Logo   `yaml:"logo"`
		Email     string `yaml:"email"`
		Social    []Link `yaml:"social"`
		About     []Link `yaml:"about"`
		Copyright string `yaml:"copyright"`
		Policies  Link   `yaml:"policies"`
	} `yaml:"footer"`

	PreFooter struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		CTA         Link   `yaml:"cta"`
	} `yaml:"prefooter"`

	Hero struct {
		Lines []string `yaml:"lines"`
	} `yaml:"hero"`
}

// ParseChrome decodes a chrome definition.
func ParseChrome(b []byte) (Chrome, error) {
	var c Chrome
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Chrome{}, fmt.Errorf("parse chrome: %w", err)
	}
	return c, nil
}

// DefaultChrome returns the chrome embedded in the binary.
func DefaultChrome() Chrome {
	c, err := ParseChrome(defaultChrome)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultChromeYAML returns the raw embedded chrome definition.
func DefaultChromeYAML() []byte {
	out := make([]byte, len(defaultChrome))
	copy(out, defaultChrome)
	return out
}

// LoadChrome reads a chrome definition from path, or returns the embedded
// default when path is empty.
func LoadChrome(path string) (Chrome, error) {
	if path == "" {
		return DefaultChrome(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Chrome{}, err
	}
	return ParseChrome(b)
}
