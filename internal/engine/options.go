package engine

// Option is one entry of a static lookup list served with the init view.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OptionsProvider supplies the static lookup lists. It is a collaborator so
// deployments can swap the catalog without touching the engine.
type OptionsProvider interface {
	Lists() map[string][]Option
}

// StaticOptions is the built-in lookup catalog.
type StaticOptions struct{}

func (StaticOptions) Lists() map[string][]Option {
	return map[string][]Option{
		"documentTypes": {
			{Value: "passport", Label: "Passport"},
			{Value: "id_card", Label: "ID card"},
			{Value: "driver_license", Label: "Driver's license"},
		},
		"employmentTypes": {
			{Value: "employed", Label: "Employed"},
			{Value: "self_employed", Label: "Self-employed"},
			{Value: "retired", Label: "Retired"},
			{Value: "unemployed", Label: "Unemployed"},
		},
		"contactChannels": {
			{Value: "phone", Label: "Phone"},
			{Value: "email", Label: "Email"},
			{Value: "sms", Label: "SMS"},
		},
	}
}
