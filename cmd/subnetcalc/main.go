package main

import (
	"embed"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

//go:embed web/templates/*.gohtml
var tmplFS embed.FS

//go:embed assets/*
var assetFS embed.FS

var tmplCache sync.Map

// planState holds the current plan. The tree value is immutable: writers
// build a replacement and swap it under the lock, readers snapshot the
// pointer and work on a value that can never change under them.
type planState struct {
	mu   sync.RWMutex
	cfg  TreePlanConfig
	tree *SubnetTree
}

func (s *planState) snapshot() (TreePlanConfig, *SubnetTree) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.tree
}

func (s *planState) replace(cfg TreePlanConfig, tree *SubnetTree) {
	s.mu.Lock()
	s.cfg = cfg
	s.tree = tree
	s.mu.Unlock()
}

func (s *planState) update(nodeID string, status Status, cascade bool) *SubnetTree {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = updateNodeStatus(s.tree, nodeID, status, cascade)
	return s.tree
}

// defaultPlanConfig is the demo plan the server starts with: a /20 campus
// block planned down to /27, with five assigned ranges and most of them
// already in use.
func defaultPlanConfig() TreePlanConfig {
	return TreePlanConfig{
		RootCIDR:  "10.1.240.0/20",
		MinPrefix: 27,
		AssignedCIDRs: []string{
			"10.1.241.0/24",
			"10.1.242.0/24",
			"10.1.243.0/24",
			"10.1.244.0/22",
			"10.1.249.0/24",
		},
		InUseCIDRs: []string{
			"10.1.241.0/24",
			"10.1.242.0/24",
			"10.1.243.0/24",
			"10.1.244.0/22",
			"10.1.249.0/26",
			"10.1.249.64/27",
		},
	}
}

func mustEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func main() {
	listen := mustEnv("LISTEN_ADDR", "0.0.0.0:8080")

	cfg := defaultPlanConfig()
	tree, err := buildSubnetTree(cfg)
	if err != nil {
		log.Fatal(err)
	}
	state := &planState{cfg: cfg, tree: tree}

	r := newRouter(state)
	log.Printf("listening on %s", listen)
	if err := r.Run(listen); err != nil {
		log.Fatal(err)
	}
}

type statusUpdateRequest struct {
	NodeID  string `json:"node_id" binding:"required"`
	Status  string `json:"status" binding:"required"`
	Cascade bool   `json:"cascade"`
}

func newRouter(state *planState) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	assetSub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		log.Fatal(err)
	}
	r.StaticFS("/assets", http.FS(assetSub))

	r.GET("/healthz", func(c *gin.Context) { c.String(200, "ok") })
	r.GET("/", func(c *gin.Context) { c.Redirect(302, "/plan") })

	// Plan pages
	r.GET("/plan", func(c *gin.Context) {
		cfg, tree := state.snapshot()
		render(c, "plan", planPageData(cfg, tree, c.Query("filter_status"), ""))
	})
	r.POST("/plan", func(c *gin.Context) {
		cfg := TreePlanConfig{
			RootCIDR:         c.PostForm("root_cidr"),
			MinPrefix:        atoiDefault(c.PostForm("min_prefix"), 24),
			AssignedCIDRs:    splitCIDRField(c.PostForm("assigned_cidrs")),
			InUseCIDRs:       splitCIDRField(c.PostForm("in_use_cidrs")),
			ReservedCIDRs:    splitCIDRField(c.PostForm("reserved_cidrs")),
			UnavailableCIDRs: splitCIDRField(c.PostForm("unavailable_cidrs")),
		}
		tree, err := buildSubnetTree(cfg)
		if err != nil {
			prevCfg, prevTree := state.snapshot()
			render(c, "plan", planPageData(prevCfg, prevTree, "", err.Error()))
			return
		}
		state.replace(cfg, tree)
		c.Redirect(302, "/plan")
	})
	r.POST("/plan/status", func(c *gin.Context) {
		status, ok := parseStatus(c.PostForm("status"))
		if ok {
			state.update(c.PostForm("node_id"), status, c.PostForm("cascade") != "")
		}
		c.Redirect(302, "/plan")
	})
	r.POST("/plan/reset", func(c *gin.Context) {
		cfg := defaultPlanConfig()
		tree, err := buildSubnetTree(cfg)
		if err != nil {
			c.String(500, err.Error())
			return
		}
		state.replace(cfg, tree)
		c.Redirect(302, "/plan")
	})

	// Single-subnet calculator
	r.GET("/calc", func(c *gin.Context) {
		render(c, "calc", calcPageData(c.Query("cidr"), c.Query("action")))
	})

	// JSON API
	r.GET("/api/plan", func(c *gin.Context) {
		cfg, tree := state.snapshot()
		c.JSON(200, gin.H{"config": cfg, "tree": tree})
	})
	r.POST("/api/plan", func(c *gin.Context) {
		var cfg TreePlanConfig
		if err := c.ShouldBindJSON(&cfg); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		tree, err := buildSubnetTree(cfg)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		state.replace(cfg, tree)
		c.JSON(200, gin.H{"config": cfg, "tree": tree})
	})
	r.POST("/api/plan/status", func(c *gin.Context) {
		var req statusUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		status, ok := parseStatus(req.Status)
		if !ok {
			c.JSON(400, gin.H{"error": "unknown status: " + req.Status})
			return
		}
		next := state.update(req.NodeID, status, req.Cascade)
		c.JSON(200, gin.H{"tree": next, "totals": calculateStatusTotals(next)})
	})
	r.GET("/api/plan/totals", func(c *gin.Context) {
		_, tree := state.snapshot()
		c.JSON(200, calculateStatusTotals(tree))
	})
	r.GET("/api/plan/free", func(c *gin.Context) {
		_, tree := state.snapshot()
		prefixes := parsePrefixList(c.Query("prefixes"))
		c.JSON(200, gin.H{"prefixes": prefixes, "blocks": getFreeBlocks(tree, prefixes)})
	})
	r.GET("/api/calc", func(c *gin.Context) {
		rng, err := parseCIDR(c.Query("cidr"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		switch c.Query("action") {
		case "divide":
			lower, upper, err := divideSubnet(rng)
			if err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, gin.H{"lower": subnetDetails(lower), "upper": subnetDetails(upper)})
		case "join":
			parent, err := joinSubnet(rng)
			if err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, subnetDetails(parent))
		default:
			c.JSON(200, subnetDetails(rng))
		}
	})

	// Export / import
	r.GET("/export/plan.csv", func(c *gin.Context) {
		cfg, tree := state.snapshot()
		if err := exportCSV(c, cfg, tree); err != nil {
			c.String(500, err.Error())
		}
	})
	r.GET("/export/plan.xlsx", func(c *gin.Context) {
		cfg, tree := state.snapshot()
		if err := exportXLSX(c, cfg, tree); err != nil {
			c.String(500, err.Error())
		}
	})
	r.GET("/export/plan.yaml", func(c *gin.Context) {
		cfg, tree := state.snapshot()
		if err := exportYAML(c, cfg, tree); err != nil {
			c.String(500, err.Error())
		}
	})
	r.GET("/export/plan.json", func(c *gin.Context) {
		cfg, tree := state.snapshot()
		if err := exportJSON(c, cfg, tree); err != nil {
			c.String(500, err.Error())
		}
	})
	r.POST("/import/yaml", func(c *gin.Context) { handleImport(c, state, "yaml") })
	r.POST("/import/json", func(c *gin.Context) { handleImport(c, state, "json") })

	return r
}

func handleImport(c *gin.Context, state *planState, format string) {
	cfg, report := importPlanConfig(c, format)
	if len(report.Errors) == 0 {
		tree, err := buildSubnetTree(cfg)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
		} else {
			state.replace(cfg, tree)
			report.Applied = true
			report.Subnets = len(tree.Nodes)
		}
	}
	prevCfg, prevTree := state.snapshot()
	data := planPageData(prevCfg, prevTree, "", "")
	data["ImportReport"] = report
	render(c, "plan", data)
}

// PlanRow is one table row on the plan page.
type PlanRow struct {
	FlatNode
	Netmask   string
	Broadcast string
	Label     string
	HasKids   bool
	Pad       int
}

func planPageData(cfg TreePlanConfig, tree *SubnetTree, filterStatus, errMsg string) gin.H {
	status, _ := parseStatus(filterStatus)
	rows := make([]PlanRow, 0, len(tree.Nodes))
	for _, n := range nodesByStatus(tree, status) {
		rows = append(rows, PlanRow{
			FlatNode:  n,
			Netmask:   maskString(n.Prefix),
			Broadcast: u32ToDotted(n.End),
			Label:     n.EffectiveStatus.Label(),
			HasKids:   len(n.Children) == 2,
			Pad:       n.Depth * 18,
		})
	}
	data := gin.H{
		"Active":       "plan",
		"Config":       cfg,
		"Rows":         rows,
		"Totals":       calculateStatusTotals(tree),
		"FilterStatus": filterStatus,
		"Statuses":     []Status{StatusInUse, StatusFree, StatusReserved, StatusUnavailable},
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	return data
}

func calcPageData(cidr, action string) gin.H {
	data := gin.H{"Active": "calc", "CIDR": cidr, "Action": action}
	if strings.TrimSpace(cidr) == "" {
		return data
	}
	rng, err := parseCIDR(cidr)
	if err != nil {
		data["Error"] = err.Error()
		return data
	}
	switch action {
	case "divide":
		lower, upper, err := divideSubnet(rng)
		if err != nil {
			data["Error"] = err.Error()
			return data
		}
		data["Halves"] = []SubnetDetails{subnetDetails(lower), subnetDetails(upper)}
	case "join":
		parent, err := joinSubnet(rng)
		if err != nil {
			data["Error"] = err.Error()
			return data
		}
		data["Details"] = subnetDetails(parent)
	default:
		data["Details"] = subnetDetails(rng)
	}
	return data
}

func splitCIDRField(raw string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	}) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parsePrefixList(raw string) []int {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if p, err := strconv.Atoi(part); err == nil && p >= 0 && p <= 32 {
			out = append(out, p)
		}
	}
	return out
}

func atoiDefault(raw string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

func render(c *gin.Context, name string, data gin.H) {
	tmpl, err := loadTemplate(name)
	if err != nil {
		c.String(500, err.Error())
		return
	}
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(c.Writer, "layout", data); err != nil {
		c.String(500, err.Error())
	}
}

func loadTemplate(name string) (*template.Template, error) {
	if cached, ok := tmplCache.Load(name); ok {
		return cached.(*template.Template), nil
	}
	files := []string{
		"web/templates/layout.gohtml",
		"web/templates/" + name + ".gohtml",
	}
	tmpl, err := template.New("").ParseFS(tmplFS, files...)
	if err != nil {
		return nil, err
	}
	tmplCache.Store(name, tmpl)
	return tmpl, nil
}
