package universe

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"swingtrade-backend/internal/domain"
)

type marketFile struct {
	Markets []struct {
		Name        string              `yaml:"name"`
		Instruments []domain.Instrument `yaml:"instruments"`
	} `yaml:"markets"`
}

// Provider serves static per-market instrument lists, loaded once from a
// YAML file. Order in the file is the tie-break order used by screening.
type Provider struct {
	order   []string
	markets map[string][]domain.Instrument
}

func Load(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read universe file: %w", err)
	}

	var file marketFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse universe file: %w", err)
	}
	if len(file.Markets) == 0 {
		return nil, fmt.Errorf("universe file %s defines no markets", path)
	}

	p := &Provider{markets: make(map[string][]domain.Instrument)}
	for _, m := range file.Markets {
		name := strings.ToLower(m.Name)
		if name == "" || len(m.Instruments) == 0 {
			return nil, fmt.Errorf("universe file %s: market %q is empty", path, m.Name)
		}
		p.order = append(p.order, name)
		p.markets[name] = m.Instruments
	}
	return p, nil
}

func (p *Provider) Instruments(market string) ([]domain.Instrument, error) {
	list, ok := p.markets[strings.ToLower(market)]
	if !ok {
		return nil, fmt.Errorf("unknown market %q (known: %s)", market, strings.Join(p.order, ", "))
	}
	out := make([]domain.Instrument, len(list))
	copy(out, list)
	return out, nil
}

func (p *Provider) Markets() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}
