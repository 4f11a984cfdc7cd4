package promo

// Language identifies a translation target. Code is the key used in a
// record's translations map; Name is the human-readable form used in
// translation prompts.
type Language struct {
	Code string
	Name string
}

// Languages is the fixed set of translation targets. A record's
// translations keys are always a subset of these codes.
var Languages = []Language{
	{Code: "es", Name: "Spanish"},
	{Code: "fr", Name: "French"},
	{Code: "zh", Name: "Chinese"},
}
