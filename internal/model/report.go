package model

import "time"

// PortfolioReport is everything an exported report shows for one portfolio.
type PortfolioReport struct {
	Portfolio   PortfolioView
	Stats       PerformanceStats
	GeneratedAt time.Time
}
