package timeline

import "fmt"

// Option keys accepted by Options.Set. They match the checkbox ids of the page.
const (
	OptionShowDps          = "show-dps"
	OptionSortByProfession = "sort-by-profession"
	OptionShowIcons        = "show-icons"
)

// Options is the mutable board state read by every redraw.
type Options struct {
	ShowDps          bool    `json:"showDps"`
	SortByProfession bool    `json:"sortByProfession"`
	ShowIcons        bool    `json:"showIcons"`
	VideoOffset      float64 `json:"videoOffset"`
}

// DefaultOptions returns the state of a freshly loaded report.
func DefaultOptions() Options {
	return Options{ShowIcons: true}
}

// Set flips a boolean option by key.
func (o *Options) Set(key string, checked bool) error {
	switch key {
	case OptionShowDps, "showDps":
		o.ShowDps = checked
	case OptionSortByProfession, "sortByProfession":
		o.SortByProfession = checked
	case OptionShowIcons, "showIcons":
		o.ShowIcons = checked
	default:
		return fmt.Errorf("unknown option %q", key)
	}
	return nil
}

// LabelMode returns how cast labels are drawn.
func (o Options) LabelMode() LabelMode {
	if o.ShowIcons {
		return LabelIcon
	}
	return LabelName
}
