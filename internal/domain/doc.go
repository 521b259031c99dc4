// Package domain models weather observations for Brazilian state capitals and
// the climate alerts derived from them.
//
// # Data Source
//
// Observations come from the OpenWeatherMap current-weather endpoint, queried
// with metric units and Brazilian Portuguese descriptions. Either the
// in-process poller or an upstream collector publishing to the Kafka source
// topic delivers them as flat JSON:
//
//	{"cityName":"Recife","state":"PE","temperature":31,"tempMin":29,
//	 "tempMax":32,"description":"nuvens dispersas","humidity":70,
//	 "windSpeed":4.1,"feelsLike":35,"icon":"03d","lastUpdated":1729224000000}
//
// Temperatures are whole degrees Celsius (the source rounds them) but fractional
// values are accepted. Timestamps are epoch milliseconds.
//
// # Temperature Classification
//
// Seven tiers, each interval closed on its upper bound:
//
//	≤ 8 °C   extreme_cold  severity extreme  alert cold
//	≤ 15 °C  cold          severity medium   alert cold
//	≤ 20 °C  cool          severity low
//	≤ 28 °C  normal        severity low
//	≤ 32 °C  warm          severity low
//	≤ 34 °C  hot           severity medium   alert heat
//	> 34 °C  extreme_heat  severity extreme  alert heat
//
// A value exactly on a boundary belongs to the colder tier: 8 is extreme_cold,
// 8.0001 is cold. Severity "high" exists in the vocabulary for compatibility
// with stored documents but no tier maps to it.
//
// # Alert Identity
//
// A city has at most one live alert. Identity is the Unicode case-folded city
// name, so "Recife", "RECIFE" and "recife" address the same slot. Alert IDs are
// "<slug>-<createdAt ms>", e.g. "sao-paulo-1729224000000".
package domain
