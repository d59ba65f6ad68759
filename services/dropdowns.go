package services

// Option is one entry of a form select.
type Option struct {
	Value string
	Label string
}

// SignOptions lists the percentage sign choices offered when a submission is
// entered by hand.
var SignOptions = []Option{
	{Value: "", Label: "None"},
	{Value: "positive", Label: "Positive (+)"},
	{Value: "negative", Label: "Negative (-)"},
}

// TenderColumnOptions returns every tender table column as a select option.
func TenderColumnOptions() []Option {
	opts := make([]Option, len(AllTenderColumns))
	for i, c := range AllTenderColumns {
		opts[i] = Option{Value: string(c), Label: c.Label()}
	}
	return opts
}
