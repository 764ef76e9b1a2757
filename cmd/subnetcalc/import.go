package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

type ImportReport struct {
	Applied  bool
	Subnets  int
	Warnings []string
	Errors   []string
}

// importPlanConfig reads an uploaded plan config (the "file" form field),
// decodes it as YAML or JSON and returns the config ready for
// buildSubnetTree. Decode and build failures land in the report, never in
// a handler error: imports are user-correctable.
func importPlanConfig(c *gin.Context, format string) (TreePlanConfig, *ImportReport) {
	report := &ImportReport{}
	var cfg TreePlanConfig

	fileHeader, err := c.FormFile("file")
	if err != nil {
		report.Errors = append(report.Errors, "upload failed: "+err.Error())
		return cfg, report
	}
	file, err := fileHeader.Open()
	if err != nil {
		report.Errors = append(report.Errors, "open file: "+err.Error())
		return cfg, report
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		report.Errors = append(report.Errors, "read file: "+err.Error())
		return cfg, report
	}

	switch format {
	case "json":
		if err := json.Unmarshal(raw, &cfg); err != nil {
			report.Errors = append(report.Errors, "parse json: "+err.Error())
			return cfg, report
		}
	case "yaml":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			report.Errors = append(report.Errors, "parse yaml: "+err.Error())
			return cfg, report
		}
	default:
		report.Errors = append(report.Errors, "unsupported format")
		return cfg, report
	}

	if strings.TrimSpace(cfg.RootCIDR) == "" {
		report.Errors = append(report.Errors, "root_cidr is required")
		return cfg, report
	}
	if len(cfg.AssignedCIDRs) == 0 {
		report.Warnings = append(report.Warnings, "no assigned_cidrs: every block will be unavailable")
	}
	return cfg, report
}
