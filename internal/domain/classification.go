package domain

// Tier is one of the seven ordered temperature bands.
type Tier string

const (
	TierExtremeCold Tier = "extreme_cold"
	TierCold        Tier = "cold"
	TierCool        Tier = "cool"
	TierNormal      Tier = "normal"
	TierWarm        Tier = "warm"
	TierHot         Tier = "hot"
	TierExtremeHeat Tier = "extreme_heat"
)

// Severity is the coarse risk level attached to a tier.
type Severity string

const (
	SeverityLow     Severity = "low"
	SeverityMedium  Severity = "medium"
	SeverityHigh    Severity = "high"
	SeverityExtreme Severity = "extreme"
)

// AlertType is the heat/cold categorization used for dashboard filtering.
// The zero value means no alert.
type AlertType string

const (
	AlertNone AlertType = ""
	AlertHeat AlertType = "heat"
	AlertCold AlertType = "cold"
)

// Style carries the presentational tokens bound to a tier.
type Style struct {
	Color     string `json:"color"`
	BgColor   string `json:"bgColor"`
	TextColor string `json:"textColor"`
}

// Classification is the result of classifying a single temperature.
type Classification struct {
	Tier        Tier      `json:"level"`
	Severity    Severity  `json:"severity"`
	AlertType   AlertType `json:"alertType,omitempty"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Reasoning   string    `json:"reasoning"`
	Style
}

// HasAlert reports whether the classification carries a heat or cold alert.
func (c Classification) HasAlert() bool {
	return c.AlertType != AlertNone
}

// band is one row of the classification table. upper is inclusive; the last
// band has no upper bound.
type band struct {
	upper     float64
	unbounded bool
	class     Classification
}

// bands is ordered by ascending temperature. Classify walks it top to bottom.
var bands = []band{
	{upper: 8, class: Classification{
		Tier:        TierExtremeCold,
		Severity:    SeverityExtreme,
		AlertType:   AlertCold,
		Label:       "Frio Extremo",
		Description: "Risco de hipotermia. Evite exposição prolongada ao frio.",
		Reasoning:   "Temperatura ≤ 8°C indica condições de frio extremo que podem causar hipotermia e outros riscos à saúde.",
		Style:       Style{Color: "border-blue-600", BgColor: "bg-blue-100", TextColor: "text-blue-800"},
	}},
	{upper: 15, class: Classification{
		Tier:        TierCold,
		Severity:    SeverityMedium,
		AlertType:   AlertCold,
		Label:       "Frio Intenso",
		Description: "Vista roupas adequadas e mantenha-se aquecido.",
		Reasoning:   "Temperatura entre 9°C e 15°C requer cuidados especiais para manter o aquecimento corporal.",
		Style:       Style{Color: "border-blue-500", BgColor: "bg-blue-50", TextColor: "text-blue-700"},
	}},
	{upper: 20, class: Classification{
		Tier:        TierCool,
		Severity:    SeverityLow,
		Label:       "Fresco",
		Description: "Condições agradáveis, use roupas leves de manga longa.",
		Reasoning:   "Temperatura entre 16°C e 20°C oferece condições confortáveis com leve sensação de frescor.",
		Style:       Style{Color: "border-cyan-400", BgColor: "bg-cyan-50", TextColor: "text-cyan-700"},
	}},
	{upper: 28, class: Classification{
		Tier:        TierNormal,
		Severity:    SeverityLow,
		Label:       "Agradável",
		Description: "Condições ideais para atividades ao ar livre.",
		Reasoning:   "Temperatura entre 21°C e 28°C representa a faixa de conforto térmico ideal para a maioria das pessoas.",
		Style:       Style{Color: "border-green-400", BgColor: "bg-green-50", TextColor: "text-green-700"},
	}},
	{upper: 32, class: Classification{
		Tier:        TierWarm,
		Severity:    SeverityLow,
		Label:       "Quente",
		Description: "Mantenha-se hidratado e use roupas leves.",
		Reasoning:   "Temperatura entre 29°C e 32°C requer atenção à hidratação e uso de roupas adequadas.",
		Style:       Style{Color: "border-yellow-400", BgColor: "bg-yellow-50", TextColor: "text-yellow-700"},
	}},
	{upper: 34, class: Classification{
		Tier:        TierHot,
		Severity:    SeverityMedium,
		AlertType:   AlertHeat,
		Label:       "Calor Intenso",
		Description: "Evite exposição ao sol e beba água regularmente.",
		Reasoning:   "Temperatura entre 33°C e 34°C pode causar desconforto e requer cuidados com hidratação.",
		Style:       Style{Color: "border-orange-500", BgColor: "bg-orange-50", TextColor: "text-orange-700"},
	}},
	{unbounded: true, class: Classification{
		Tier:        TierExtremeHeat,
		Severity:    SeverityExtreme,
		AlertType:   AlertHeat,
		Label:       "Calor Extremo",
		Description: "Risco de insolação. Evite atividades ao ar livre.",
		Reasoning:   "Temperatura ≥ 35°C representa risco significativo de insolação, desidratação e outros problemas de saúde relacionados ao calor.",
		Style:       Style{Color: "border-red-600", BgColor: "bg-red-100", TextColor: "text-red-800"},
	}},
}

// Classify maps a temperature in degrees Celsius to its classification.
//
// Every input maps to exactly one tier. NaN compares false against every bound
// and therefore lands in extreme_heat, as does +Inf; -Inf is extreme_cold.
// Callers that must reject non-finite readings validate before classifying.
func Classify(celsius float64) Classification {
	for _, b := range bands {
		if b.unbounded || celsius <= b.upper {
			return b.class
		}
	}
	return bands[len(bands)-1].class
}

// AllTiers returns the seven tiers in ascending temperature order.
func AllTiers() []Tier {
	tiers := make([]Tier, len(bands))
	for i, b := range bands {
		tiers[i] = b.class.Tier
	}
	return tiers
}

// ParseTier validates a tier name.
func ParseTier(s string) (Tier, bool) {
	for _, b := range bands {
		if string(b.class.Tier) == s {
			return b.class.Tier, true
		}
	}
	return "", false
}
