package dataset

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// CleaningRule 清洗规则
type CleaningRule interface {
	Apply(schema *Schema, obs Observation) error
	Name() string
}

// QualityIssue 质量问题
type QualityIssue struct {
	Type      string    `json:"type"`
	Severity  string    `json:"severity"` // low, medium, high
	Message   string    `json:"message"`
	Row       int       `json:"row"`
	Timestamp time.Time `json:"timestamp"`
}

// Cleaner 数据清洗器
type Cleaner struct {
	rules      []CleaningRule
	issues     []QualityIssue
	issuesLock sync.RWMutex

	stats     CleaningStats
	statsLock sync.RWMutex
}

// CleaningStats 清洗统计
type CleaningStats struct {
	TotalProcessed int64            `json:"total_processed"`
	Passed         int64            `json:"passed"`
	Rejected       int64            `json:"rejected"`
	Issues         map[string]int64 `json:"issues"`
	LastClean      time.Time        `json:"last_clean"`
}

// NewCleaner 创建数据清洗器（带默认规则）
func NewCleaner() *Cleaner {
	cleaner := &Cleaner{
		rules: make([]CleaningRule, 0),
		stats: CleaningStats{
			Issues: make(map[string]int64),
		},
	}

	cleaner.AddRule(NewRangeValidationRule())
	cleaner.AddRule(NewDuplicateDetectionRule())

	return cleaner
}

// AddRule 添加清洗规则
func (c *Cleaner) AddRule(rule CleaningRule) {
	c.rules = append(c.rules, rule)
}

// Clean 清洗表格，返回通过的观测和发现的问题
func (c *Cleaner) Clean(table *Table) (*Table, []QualityIssue) {
	cleaned := &Table{Schema: table.Schema}
	var issues []QualityIssue

	c.statsLock.Lock()
	defer c.statsLock.Unlock()

	for i, obs := range table.Observations {
		c.stats.TotalProcessed++

		var rowIssues []QualityIssue
		for _, rule := range c.rules {
			if err := rule.Apply(&table.Schema, obs); err != nil {
				rowIssues = append(rowIssues, QualityIssue{
					Type:      rule.Name(),
					Severity:  "high",
					Message:   err.Error(),
					Row:       i + 1,
					Timestamp: time.Now(),
				})
				c.stats.Issues[rule.Name()]++
			}
		}

		if len(rowIssues) > 0 {
			c.stats.Rejected++
			issues = append(issues, rowIssues...)
			c.issuesLock.Lock()
			c.issues = append(c.issues, rowIssues...)
			c.issuesLock.Unlock()
			continue
		}

		c.stats.Passed++
		cleaned.Observations = append(cleaned.Observations, obs)
	}

	c.stats.LastClean = time.Now()

	return cleaned, issues
}

// GetStats 获取统计信息
func (c *Cleaner) GetStats() CleaningStats {
	c.statsLock.RLock()
	defer c.statsLock.RUnlock()

	return c.stats
}

// GetIssues 获取问题列表
func (c *Cleaner) GetIssues(limit int) []QualityIssue {
	c.issuesLock.RLock()
	defer c.issuesLock.RUnlock()

	if limit <= 0 || limit > len(c.issues) {
		limit = len(c.issues)
	}

	issues := make([]QualityIssue, limit)
	copy(issues, c.issues[len(c.issues)-limit:])
	return issues
}

// ============ 清洗规则实现 ============

// RangeValidationRule 取值范围验证规则
type RangeValidationRule struct {
	Bounds map[string][2]float64
}

// NewRangeValidationRule 创建范围验证规则，默认边界来自行为特征的合理取值
func NewRangeValidationRule() *RangeValidationRule {
	return &RangeValidationRule{
		Bounds: map[string][2]float64{
			"hours_awake":            {0, 30},
			"decisions_made":         {0, 200},
			"task_switches":          {0, 50},
			"avg_decision_time":      {0, 15},
			"sleep_hours":            {0, 14},
			"caffeine_cups":          {0, 10},
			"stress_level":           {0, 10},
			"error_rate":             {0, 1},
			"cognitive_load":         {0, 10},
			"decision_fatigue_score": {0, 100},
		},
	}
}

func (r *RangeValidationRule) Name() string {
	return "range_validation"
}

func (r *RangeValidationRule) Apply(schema *Schema, obs Observation) error {
	for i, column := range schema.Features {
		value := obs.Values[i]
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("column %q has non-finite value", column)
		}
		bounds, ok := r.Bounds[column]
		if !ok {
			continue
		}
		if value < bounds[0] || value > bounds[1] {
			return fmt.Errorf("column %q value %.3f out of range [%.1f, %.1f]",
				column, value, bounds[0], bounds[1])
		}
	}
	return nil
}

// DuplicateDetectionRule 重复检测规则
type DuplicateDetectionRule struct {
	seenMap map[string]struct{}
	mu      sync.Mutex
}

func NewDuplicateDetectionRule() *DuplicateDetectionRule {
	return &DuplicateDetectionRule{
		seenMap: make(map[string]struct{}),
	}
}

func (r *DuplicateDetectionRule) Name() string {
	return "duplicate_detection"
}

func (r *DuplicateDetectionRule) Apply(schema *Schema, obs Observation) error {
	var b strings.Builder
	for _, value := range obs.Values {
		fmt.Fprintf(&b, "%.6f|", value)
	}
	key := b.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.seenMap[key]; exists {
		return fmt.Errorf("duplicate observation")
	}

	r.seenMap[key] = struct{}{}
	return nil
}

// OutlierDetectionRule 异常值检测规则（z-score）
type OutlierDetectionRule struct {
	StdDevThreshold float64

	means   []float64
	stddevs []float64
}

func NewOutlierDetectionRule() *OutlierDetectionRule {
	return &OutlierDetectionRule{
		StdDevThreshold: 3.0, // 3个标准差
	}
}

func (r *OutlierDetectionRule) Name() string {
	return "outlier_detection"
}

// Fit 基于整表计算每列的均值和标准差
func (r *OutlierDetectionRule) Fit(table *Table) {
	n := len(table.Observations)
	if n == 0 {
		return
	}
	cols := len(table.Schema.Features)
	r.means = make([]float64, cols)
	r.stddevs = make([]float64, cols)

	for _, obs := range table.Observations {
		for i, value := range obs.Values {
			r.means[i] += value
		}
	}
	for i := range r.means {
		r.means[i] /= float64(n)
	}
	for _, obs := range table.Observations {
		for i, value := range obs.Values {
			diff := value - r.means[i]
			r.stddevs[i] += diff * diff
		}
	}
	for i := range r.stddevs {
		r.stddevs[i] = math.Sqrt(r.stddevs[i] / float64(n))
	}
}

func (r *OutlierDetectionRule) Apply(schema *Schema, obs Observation) error {
	if r.means == nil {
		return nil
	}
	for i, column := range schema.Features {
		if schema.IsCategorical(column) || r.stddevs[i] == 0 {
			continue
		}
		zScore := math.Abs((obs.Values[i] - r.means[i]) / r.stddevs[i])
		if zScore > r.StdDevThreshold {
			return fmt.Errorf("column %q value %.3f is %.1f standard deviations from the mean",
				column, obs.Values[i], zScore)
		}
	}
	return nil
}
