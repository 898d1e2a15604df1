package project

import "tabkit/domain/core"

// ChartType enumerates the supported chart renderings. Rendering itself is a
// display-side concern; the tree only stores the configuration.
type ChartType string

const (
	ChartLine    ChartType = "line"
	ChartScatter ChartType = "scatter"
	ChartBar     ChartType = "bar"
)

// Chart is the plotting configuration carried by a chart item
type Chart struct {
	ChartType ChartType   `json:"chart_type"`
	ItemID    core.ItemID `json:"dataset_item_id"`
	XColumn   string      `json:"x_column"`
	YColumns  []string    `json:"y_columns"`
}
