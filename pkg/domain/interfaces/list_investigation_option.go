package interfaces

import "github.com/payops-lab/mtnavigator/pkg/domain/types"

// ListInvestigationOption is a functional option for filtering and paging
// investigations in List
type ListInvestigationOption func(*listInvestigationConfig)

type listInvestigationConfig struct {
	status   *types.InvestigationStatus
	priority *types.Priority
	limit    int
	offset   int
}

// WithStatus filters investigations by status
func WithStatus(status types.InvestigationStatus) ListInvestigationOption {
	return func(c *listInvestigationConfig) {
		c.status = &status
	}
}

// WithPriority filters investigations by priority
func WithPriority(priority types.Priority) ListInvestigationOption {
	return func(c *listInvestigationConfig) {
		c.priority = &priority
	}
}

// WithPage sets pagination. A non-positive limit falls back to 100.
func WithPage(limit, offset int) ListInvestigationOption {
	return func(c *listInvestigationConfig) {
		c.limit = limit
		c.offset = offset
	}
}

// BuildListInvestigationConfig builds a listInvestigationConfig from options
func BuildListInvestigationConfig(opts ...ListInvestigationOption) *listInvestigationConfig {
	cfg := &listInvestigationConfig{limit: 100}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.limit <= 0 {
		cfg.limit = 100
	}
	if cfg.offset < 0 {
		cfg.offset = 0
	}
	return cfg
}

// Status returns the status filter value, or nil if not set
func (c *listInvestigationConfig) Status() *types.InvestigationStatus {
	return c.status
}

// Priority returns the priority filter value, or nil if not set
func (c *listInvestigationConfig) Priority() *types.Priority {
	return c.priority
}

// Limit returns the page size
func (c *listInvestigationConfig) Limit() int {
	return c.limit
}

// Offset returns the page offset
func (c *listInvestigationConfig) Offset() int {
	return c.offset
}
