package domain

// City is a monitored city and its state abbreviation.
type City struct {
	Name  string `json:"name" koanf:"name"`
	State string `json:"state" koanf:"state"`
}

// Code returns the URL-friendly slug of the city.
func (c City) Code() string {
	return Slug(c.Name)
}

var capitals = []City{
	{Name: "São Paulo", State: "SP"},
	{Name: "Rio de Janeiro", State: "RJ"},
	{Name: "Brasília", State: "DF"},
	{Name: "Salvador", State: "BA"},
	{Name: "Fortaleza", State: "CE"},
	{Name: "Belo Horizonte", State: "MG"},
	{Name: "Manaus", State: "AM"},
	{Name: "Curitiba", State: "PR"},
	{Name: "Recife", State: "PE"},
	{Name: "Porto Alegre", State: "RS"},
	{Name: "Goiânia", State: "GO"},
	{Name: "Belém", State: "PA"},
	{Name: "São Luís", State: "MA"},
	{Name: "Maceió", State: "AL"},
	{Name: "Campo Grande", State: "MS"},
	{Name: "João Pessoa", State: "PB"},
	{Name: "Teresina", State: "PI"},
	{Name: "Natal", State: "RN"},
	{Name: "Florianópolis", State: "SC"},
	{Name: "Vitória", State: "ES"},
	{Name: "Aracaju", State: "SE"},
	{Name: "Cuiabá", State: "MT"},
	{Name: "Porto Velho", State: "RO"},
	{Name: "Rio Branco", State: "AC"},
	{Name: "Macapá", State: "AP"},
	{Name: "Boa Vista", State: "RR"},
	{Name: "Palmas", State: "TO"},
}

// Large non-capital cities that the data source also reports on.
var otherCities = []City{
	{Name: "Guarulhos", State: "SP"},
	{Name: "Campinas", State: "SP"},
}

// stateByCity is keyed by CityKey.
var stateByCity = func() map[string]string {
	m := make(map[string]string, len(capitals)+len(otherCities))
	for _, c := range capitals {
		m[CityKey(c.Name)] = c.State
	}
	for _, c := range otherCities {
		m[CityKey(c.Name)] = c.State
	}
	return m
}()

// Capitals returns the 26 state capitals and the federal capital.
func Capitals() []City {
	out := make([]City, len(capitals))
	copy(out, capitals)
	return out
}

// StateForCity returns the state abbreviation of a known city, or "BR".
func StateForCity(name string) string {
	if s, ok := stateByCity[CityKey(name)]; ok {
		return s
	}
	return "BR"
}
