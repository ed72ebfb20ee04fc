package models

// WeatherSnapshot is the cached forecast at weather/current.
type WeatherSnapshot struct {
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
	WeatherCode int     `json:"weatherCode" mapstructure:"weatherCode"`
	WindSpeed   float64 `json:"windSpeed" mapstructure:"windSpeed"`
	TodayMax    float64 `json:"todayMax" mapstructure:"todayMax"`
	TodayMin    float64 `json:"todayMin" mapstructure:"todayMin"`
	FetchedAt   int64   `json:"fetchedAt" mapstructure:"fetchedAt"` // epoch ms
}
