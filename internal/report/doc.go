// Package report renders a planned mission for people: a PNG plan view
// drawn with gonum/plot and an interactive HTML page built with
// go-echarts. Neither output is read back by the planner.
package report
