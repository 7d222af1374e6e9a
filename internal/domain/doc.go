// Package domain models daily wind-speed series from independent providers and
// the extreme-value statistics derived from them.
//
// # Data Sources
//
// Each provider (Meteostat stations, NOAA ISD stations, Open-Meteo, NASA POWER,
// ERA5, Visual Crossing) is fetched upstream and delivered as one daily table per
// source. Tables arrive with provider-specific column sets; the only contract is
// that wind speeds are already in m/s and times are UTC.
//
// # Canonical Schema
//
//	time            UTC date of the observation day
//	windspeed_mean  daily maximum of the mean wind at 10 m (m/s)
//	windspeed_gust  daily maximum gust (m/s), optional
//	wind_direction  degrees, direction the wind blows from, optional
//
// Column aliases:
//
//	"wind_speed" → windspeed_mean and "wind_gust" → windspeed_gust, applied only
//	when the canonical column is absent. The time column is "time", else "date".
//
// Missing values:
//
//	Empty cells and the NaN/NA/None/null sentinels are missing. A row with an
//	unparsable time keeps its values but has no time; stages that need a time
//	drop such rows themselves.
//
// # Statistics
//
// Coverage is the share of time-bearing rows where a variable is present.
// Descriptive statistics require at least [MinDescriptiveValues] mean-wind values.
// Extreme days are days whose value strictly exceeds a building-code threshold.
//
// Return levels come from a Gumbel (Type I, maxima) fit on annual maxima:
//
//	p  = 1 − 1/T
//	rl = loc − scale · ln(−ln p)
//
// A series with fewer annual maxima than the configured minimum (default
// [DefaultMinYears]) yields no return level for any period.
//
// # Outcomes
//
// Every stage reports an [Outcome] per source and variable instead of failing.
// Skipped means the input was insufficient; failed means a computation was
// attempted and could not complete (for example a degenerate Gumbel fit).
package domain
