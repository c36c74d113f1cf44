package model

// AnalyticsOverview is the dashboard rollup for the caller's active company:
// item totals plus the per-category breakdown.
type AnalyticsOverview struct {
	CompanyID           int64            `json:"company_id"`
	TotalCompanies      int              `json:"total_companies"`
	TotalInventoryItems int64            `json:"total_inventory_items"`
	InventoryByCategory map[string]int64 `json:"inventory_by_category"`
}
