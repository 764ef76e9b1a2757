package main

import (
	"encoding/csv"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

type ExportBundle struct {
	Config  TreePlanConfig `json:"config" yaml:"config"`
	Totals  StatusTotals   `json:"totals" yaml:"totals"`
	Subnets []ExportSubnet `json:"subnets" yaml:"subnets"`
}

type ExportSubnet struct {
	CIDR       string `json:"cidr" yaml:"cidr"`
	Network    string `json:"network" yaml:"network"`
	Prefix     int    `json:"prefix" yaml:"prefix"`
	Netmask    string `json:"netmask" yaml:"netmask"`
	Broadcast  string `json:"broadcast" yaml:"broadcast"`
	TotalIPs   uint64 `json:"total_ips" yaml:"total_ips"`
	Status     string `json:"status" yaml:"status"`
	Explicit   string `json:"explicit_status,omitempty" yaml:"explicit_status,omitempty"`
	Default    string `json:"default_status" yaml:"default_status"`
	Depth      int    `json:"depth" yaml:"depth"`
	ParentCIDR string `json:"parent_cidr,omitempty" yaml:"parent_cidr,omitempty"`
	ChildLower string `json:"child_lower,omitempty" yaml:"child_lower,omitempty"`
	ChildUpper string `json:"child_upper,omitempty" yaml:"child_upper,omitempty"`
}

func buildExportBundle(cfg TreePlanConfig, tree *SubnetTree) ExportBundle {
	bundle := ExportBundle{
		Config: cfg,
		Totals: calculateStatusTotals(tree),
	}
	for _, n := range flattenTree(tree) {
		row := ExportSubnet{
			CIDR:       n.ID,
			Network:    n.Network,
			Prefix:     n.Prefix,
			Netmask:    maskString(n.Prefix),
			Broadcast:  u32ToDotted(n.End),
			TotalIPs:   n.TotalIPs,
			Status:     string(n.EffectiveStatus),
			Explicit:   string(n.ExplicitStatus),
			Default:    string(n.DefaultStatus),
			Depth:      n.Depth,
			ParentCIDR: n.ParentID,
		}
		if len(n.Children) == 2 {
			row.ChildLower = n.Children[0]
			row.ChildUpper = n.Children[1]
		}
		bundle.Subnets = append(bundle.Subnets, row)
	}
	return bundle
}

func exportCSV(c *gin.Context, cfg TreePlanConfig, tree *SubnetTree) error {
	bundle := buildExportBundle(cfg, tree)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=subnetcalc_plan.csv")
	w := csv.NewWriter(c.Writer)
	if err := w.Write([]string{
		"cidr", "network", "prefix", "netmask", "broadcast",
		"total_ips", "status", "explicit_status", "default_status", "depth",
	}); err != nil {
		return err
	}
	for _, row := range bundle.Subnets {
		_ = w.Write([]string{
			row.CIDR, row.Network, itoa(row.Prefix), row.Netmask, row.Broadcast,
			u64toa(row.TotalIPs), row.Status, row.Explicit, row.Default, itoa(row.Depth),
		})
	}
	w.Flush()
	return w.Error()
}

func exportXLSX(c *gin.Context, cfg TreePlanConfig, tree *SubnetTree) error {
	bundle := buildExportBundle(cfg, tree)
	f := excelize.NewFile()

	planSheet := "Plan"
	f.SetSheetName("Sheet1", planSheet)
	writeSheetRows(f, planSheet, buildPlanSheet(bundle.Subnets))

	totalsSheet := "Totals"
	f.NewSheet(totalsSheet)
	writeSheetRows(f, totalsSheet, buildTotalsSheet(bundle.Totals))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return err
	}
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=subnetcalc_plan.xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	return nil
}

func exportYAML(c *gin.Context, cfg TreePlanConfig, tree *SubnetTree) error {
	bundle := buildExportBundle(cfg, tree)
	out, err := yaml.Marshal(bundle)
	if err != nil {
		return err
	}
	c.Header("Content-Type", "application/yaml; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=subnetcalc_plan.yaml")
	c.String(200, string(out))
	return nil
}

func exportJSON(c *gin.Context, cfg TreePlanConfig, tree *SubnetTree) error {
	bundle := buildExportBundle(cfg, tree)
	out, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return err
	}
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=subnetcalc_plan.json")
	c.String(200, string(out))
	return nil
}

func buildPlanSheet(rows []ExportSubnet) [][]interface{} {
	out := [][]interface{}{{"cidr", "network", "prefix", "netmask", "broadcast", "total_ips", "status", "explicit_status", "default_status", "depth", "parent_cidr"}}
	for _, r := range rows {
		out = append(out, []interface{}{r.CIDR, r.Network, r.Prefix, r.Netmask, r.Broadcast, r.TotalIPs, r.Status, r.Explicit, r.Default, r.Depth, r.ParentCIDR})
	}
	return out
}

func buildTotalsSheet(totals StatusTotals) [][]interface{} {
	return [][]interface{}{
		{"status", "addresses"},
		{"total", totals.Total},
		{string(StatusInUse), totals.InUse},
		{string(StatusFree), totals.Free},
		{string(StatusReserved), totals.Reserved},
		{string(StatusUnavailable), totals.Unavailable},
	}
}

func writeSheetRows(f *excelize.File, sheet string, rows [][]interface{}) {
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		_ = f.SetSheetRow(sheet, cell, &row)
	}
}
