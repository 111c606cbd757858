// Package compliance evaluates safety rules against ground-operations
// samples, mirrors every violation into the hash-chained risk channel,
// and accumulates an in-memory alert log pushed to websocket subscribers.
package compliance

import (
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/airsideops/towing-safety-station/ledger"
)

// DefaultContractName is the towing-safety rule set registered at
// platform construction.
const DefaultContractName = "towing_safety"

// channelSpecs are the per-topic channels every platform starts with.
var channelSpecs = []struct{ name, description string }{
	{"vehicle", "vehicle channel: live routes, checkout and parking times"},
	{"personnel", "personnel channel: driver and marshaller identity, qualifications"},
	{"schedule", "schedule channel: ground-service rosters, flight plans, routing"},
	{"regulation", "regulation channel: authority directives, company manuals"},
	{"flight_info", "flight info channel: actual block times, stand assignments"},
	{"risk", "risk channel: violation alarms, risk event records"},
}

// Platform owns the ledger channels, participant nodes, contracts and the
// alert log. It is constructed once at startup and passed to everything
// that needs it.
type Platform struct {
	mu        sync.Mutex
	channels  map[string]*ledger.Channel
	nodes     []Node
	contracts map[string]*Contract
	alerts    []Alert

	store *ledger.Store
	hub   *alertHub
}

// New constructs a platform with the default channels, nodes and the
// towing-safety contract. store may be nil to run without durability.
func New(store *ledger.Store) *Platform {
	p := &Platform{
		channels:  make(map[string]*ledger.Channel, len(channelSpecs)),
		contracts: map[string]*Contract{},
		store:     store,
		hub:       newAlertHub(),
	}

	for _, spec := range channelSpecs {
		ch := p.openChannel(spec.name, spec.description)
		p.channels[spec.name] = ch
	}

	p.nodes = []Node{
		{ID: "node_1", Type: "ground_handling", Organization: "Juneyao Airlines Ground Services"},
		{ID: "node_2", Type: "airline", Organization: "China Eastern Airlines"},
		{ID: "node_3", Type: "airport", Organization: "Shanghai Pudong International Airport"},
		{ID: "node_4", Type: "regulator", Organization: "CAAC East China Regional Administration"},
	}

	p.contracts[DefaultContractName] = NewContract(DefaultContractName, Rules{
		RuleMaxSpeed:           3, // km/h
		RuleMinDistance:        5, // m
		RuleRequiredBrakeTests: 2,
	})

	log.Printf("Compliance platform initialized (%d channels, %d nodes)", len(p.channels), len(p.nodes))
	return p
}

// openChannel resumes a persisted chain when the store already holds
// blocks for the channel, so appends continue at the next index instead
// of colliding with the prior run's rows. Without persisted blocks (or
// without a store) it starts a fresh chain and persists its genesis.
func (p *Platform) openChannel(name, description string) *ledger.Channel {
	if p.store != nil {
		blocks, err := p.store.LoadChannel(name)
		if err != nil {
			log.Printf("Failed to load channel %s from store: %v", name, err)
		}
		if len(blocks) > 0 {
			ch := ledger.RestoreChannel(name, description, blocks)
			if !ch.VerifyIntegrity() {
				log.Printf("Restored channel %s failed integrity verification", name)
			}
			log.Printf("Restored channel %s from store (%d blocks)", name, len(blocks))
			return ch
		}
	}

	ch := ledger.NewChannel(name, description)
	p.persist(name, ch.Blocks()[0])
	return ch
}

// RegisterContract adds or replaces a named rule set.
func (p *Platform) RegisterContract(name string, rules Rules) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.contracts[name] = NewContract(name, rules)
}

// UpdateRules replaces the thresholds of an existing contract. This is
// the only sanctioned mutation of a rule set.
func (p *Platform) UpdateRules(name string, rules Rules) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.contracts[name]
	if !ok {
		return ErrContractNotFound
	}
	c.Rules = rules
	return nil
}

// Channel returns the named channel.
func (p *Platform) Channel(name string) (*ledger.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, ok := p.channels[name]
	if !ok {
		return nil, ErrChannelNotFound
	}
	return ch, nil
}

// UploadData appends a payload to the named channel, stamped with
// uploader metadata. node may be nil for anonymous uploads.
func (p *Platform) UploadData(channelName string, data map[string]any, node *Node) (ledger.Block, error) {
	ch, err := p.Channel(channelName)
	if err != nil {
		return ledger.Block{}, err
	}

	payload := make(map[string]any, len(data)+3)
	for k, v := range data {
		payload[k] = v
	}
	payload["_uploaded_at"] = timestamp()
	if node != nil {
		payload["_uploaded_by"] = node.ID
		payload["_organization"] = node.Organization
	} else {
		payload["_uploaded_by"] = "anonymous"
	}

	block := ch.AddData(payload)
	p.persist(channelName, block)
	log.Printf("[chain] channel=%s block=%d uploader=%v", channelName, block.Index, payload["_uploaded_by"])
	return block, nil
}

// CheckCompliance evaluates one sample against the named contract. On a
// non-compliant result the violations are written to the risk channel,
// attributed to the regulator node, and mirrored into the alert log. The
// evaluation result is returned regardless of compliance outcome.
func (p *Platform) CheckCompliance(contractName string, sample Sample) (CheckResult, error) {
	contract, err := p.contract(contractName)
	if err != nil {
		return CheckResult{}, err
	}

	result := contract.CheckCompliance(sample)
	if !result.Compliant {
		p.recordViolations(contract, result.Violations, sample.asMap(), "")
	}
	return result, nil
}

// RunComplianceCheckOnGPS evaluates a batch of vehicle-fix records
// against the named contract. Records may be typed fixes or key-value
// mappings. Overrides transiently replace matching thresholds for this
// call only; the contract's base rules are never touched. maxRecords
// caps the number of records checked when positive.
func (p *Platform) RunComplianceCheckOnGPS(recs []any, contractName string, overrides *Overrides, maxRecords int) (AlertTable, error) {
	contract, err := p.contract(contractName)
	if err != nil {
		return AlertTable{}, err
	}

	effective := contract.Rules.merged(overrides)

	if maxRecords > 0 && maxRecords < len(recs) {
		recs = recs[:maxRecords]
	}

	table := AlertTable{Columns: AlertTableColumns, Rows: []Alert{}}
	for _, rec := range recs {
		sample, raw, vehicle := sampleFromRecord(rec)

		result := contract.checkWith(effective, sample)
		if result.Compliant {
			continue
		}

		added := p.recordViolations(contract, result.Violations, map[string]any{
			"vehicle_record": raw,
			"checked_at":     timestamp(),
		}, vehicle)
		table.Rows = append(table.Rows, added...)
	}

	return table, nil
}

// recordViolations uploads one risk block covering all violations of a
// sample and appends one alert per violation. It returns the appended
// alerts.
func (p *Platform) recordViolations(contract *Contract, violations []Violation, sampleMeta map[string]any, vehicle string) []Alert {
	regulator := p.regulatorNode()
	if _, err := p.UploadData("risk", map[string]any{
		"contract":    contract.Name,
		"violations":  violations,
		"sample_data": sampleMeta,
		"reported_at": timestamp(),
	}, regulator); err != nil {
		log.Printf("Failed to write risk block: %v", err)
	}

	alerts := make([]Alert, 0, len(violations))
	for _, v := range violations {
		alert := Alert{
			ID:            uuid.NewString(),
			Contract:      contract.Name,
			VehicleID:     vehicle,
			Rule:          v.Rule,
			Message:       v.Message,
			Severity:      v.Severity,
			ViolationTime: v.Timestamp,
			Sample:        sampleMeta,
			CheckedAt:     timestamp(),
		}
		alerts = append(alerts, alert)

		log.Printf("[alert] contract=%s rule=%s severity=%s vehicle=%s", contract.Name, v.Rule, v.Severity, vehicle)
	}

	p.mu.Lock()
	p.alerts = append(p.alerts, alerts...)
	p.mu.Unlock()

	for _, alert := range alerts {
		p.hub.broadcast(alert)
	}
	return alerts
}

// regulatorNode returns the first node whose type or organization marks a
// regulatory authority, falling back to the last registered node.
func (p *Platform) regulatorNode() *Node {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.nodes {
		n := &p.nodes[i]
		if isRegulator(n.Type) || isRegulator(n.Organization) {
			return n
		}
	}
	if len(p.nodes) > 0 {
		return &p.nodes[len(p.nodes)-1]
	}
	return nil
}

func isRegulator(s string) bool {
	return strings.Contains(strings.ToLower(s), "regulator") || strings.Contains(s, "监管")
}

// ChannelInfo is the wire shape of a channel listing entry.
type ChannelInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Blocks      int    `json:"blocks"`
}

// Channels lists every channel with its current length, following the
// fixed construction order.
func (p *Platform) Channels() []ChannelInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]ChannelInfo, 0, len(p.channels))
	for _, spec := range channelSpecs {
		ch := p.channels[spec.name]
		out = append(out, ChannelInfo{Name: ch.Name, Description: ch.Description, Blocks: ch.Len()})
	}
	return out
}

// VerifyAllChannels verifies every channel's chain integrity.
func (p *Platform) VerifyAllChannels() map[string]bool {
	p.mu.Lock()
	channels := make(map[string]*ledger.Channel, len(p.channels))
	for name, ch := range p.channels {
		channels[name] = ch
	}
	p.mu.Unlock()

	out := make(map[string]bool, len(channels))
	for name, ch := range channels {
		out[name] = ch.VerifyIntegrity()
	}
	return out
}

// Statistics returns aggregate platform counters. Pure read.
func (p *Platform) Statistics() Statistics {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := Statistics{
		BlocksPerChannel:      make(map[string]int, len(p.channels)),
		ViolationsPerContract: make(map[string]int, len(p.contracts)),
		AlertsCached:          len(p.alerts),
	}
	for name, ch := range p.channels {
		n := ch.Len()
		stats.BlocksPerChannel[name] = n
		stats.TotalBlocks += n
	}
	for name, c := range p.contracts {
		n := c.ViolationCount()
		stats.ViolationsPerContract[name] = n
		stats.TotalViolations += n
	}
	return stats
}

// Alerts returns the most recent limit alerts, oldest first.
func (p *Platform) Alerts(limit int) []Alert {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := 0
	if limit > 0 && len(p.alerts) > limit {
		start = len(p.alerts) - limit
	}
	out := make([]Alert, len(p.alerts)-start)
	copy(out, p.alerts[start:])
	return out
}

// Nodes returns the registered participant nodes.
func (p *Platform) Nodes() []Node {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Node, len(p.nodes))
	copy(out, p.nodes)
	return out
}

func (p *Platform) contract(name string) (*Contract, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.contracts[name]
	if !ok {
		return nil, ErrContractNotFound
	}
	return c, nil
}

// persist writes a block to the store when durability is enabled. Store
// failures are logged, not fatal: the in-memory chain stays the source of
// truth for this process.
func (p *Platform) persist(channel string, block ledger.Block) {
	if p.store == nil {
		return
	}
	if err := p.store.Append(channel, block); err != nil {
		log.Printf("Failed to persist block %d on channel %s: %v", block.Index, channel, err)
	}
}
