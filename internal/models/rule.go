package models

// RuleType categorizes a maintenance rule.
type RuleType string

const (
	RuleTypeOil     RuleType = "oil"
	RuleTypeChain   RuleType = "chain"
	RuleTypeTyre    RuleType = "tyre"
	RuleTypeService RuleType = "service"
	RuleTypeBrake   RuleType = "brake"
	RuleTypeBattery RuleType = "battery"
	RuleTypeCustom  RuleType = "custom"
)

// ConditionKind identifies what a condition measures.
type ConditionKind string

const (
	ConditionOdometer ConditionKind = "odometer"
	ConditionTime     ConditionKind = "time"
)

// Operator compares the measured value against the condition threshold.
type Operator string

const (
	OperatorGTE Operator = "gte"
	OperatorLTE Operator = "lte"
	OperatorEQ  Operator = "eq"
)

// Combinator links a condition's verdict to the next condition in the rule.
type Combinator string

const (
	CombinatorOr  Combinator = "OR"
	CombinatorAnd Combinator = "AND"
)

// Recurrence controls whether a rule keeps firing after completion.
type Recurrence string

const (
	RecurrenceOnce      Recurrence = "once"
	RecurrenceRecurring Recurrence = "recurring"
)

// Condition is a single distance- or time-based threshold test within a rule.
// Value is kilometers for odometer conditions and days for time conditions.
// Order within a rule is significant.
type Condition struct {
	Kind       ConditionKind `json:"kind" bson:"kind"`
	Operator   Operator      `json:"operator" bson:"operator"`
	Value      float64       `json:"value" bson:"value"`
	Combinator Combinator    `json:"combinator,omitempty" bson:"combinator,omitempty"`
}

// MaintenanceRule defines when a piece of maintenance work becomes due.
// Rules are immutable once created; the registry they live in is mutable.
type MaintenanceRule struct {
	ID           string      `json:"id" bson:"rule_id"`
	UserID       string      `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Type         RuleType    `json:"type" bson:"type"`
	Title        string      `json:"title" bson:"title"`
	Description  string      `json:"description" bson:"description"`
	Conditions   []Condition `json:"conditions" bson:"conditions"`
	Recurrence   Recurrence  `json:"recurrence" bson:"recurrence"`
	BasePriority int         `json:"base_priority" bson:"base_priority"` // 0-100
}

// IsValidRuleType checks if a rule type is one of the closed categories.
func IsValidRuleType(t RuleType) bool {
	switch t {
	case RuleTypeOil, RuleTypeChain, RuleTypeTyre, RuleTypeService,
		RuleTypeBrake, RuleTypeBattery, RuleTypeCustom:
		return true
	default:
		return false
	}
}

// IsValidConditionKind checks if a condition kind is recognized.
func IsValidConditionKind(k ConditionKind) bool {
	return k == ConditionOdometer || k == ConditionTime
}

// DefaultRules returns the stock maintenance schedule for commuter bikes.
func DefaultRules() []MaintenanceRule {
	return []MaintenanceRule{
		{
			ID:          "rule_oil_change",
			Type:        RuleTypeOil,
			Title:       "Engine Oil Change",
			Description: "Replace engine oil and filter",
			Conditions: []Condition{
				{Kind: ConditionOdometer, Operator: OperatorGTE, Value: 3000, Combinator: CombinatorOr},
				{Kind: ConditionTime, Operator: OperatorGTE, Value: 90},
			},
			Recurrence:   RecurrenceRecurring,
			BasePriority: 90,
		},
		{
			ID:          "rule_chain_lube",
			Type:        RuleTypeChain,
			Title:       "Chain Lubrication",
			Description: "Clean and lubricate drive chain",
			Conditions: []Condition{
				{Kind: ConditionOdometer, Operator: OperatorGTE, Value: 500, Combinator: CombinatorOr},
				{Kind: ConditionTime, Operator: OperatorGTE, Value: 14},
			},
			Recurrence:   RecurrenceRecurring,
			BasePriority: 60,
		},
		{
			ID:          "rule_tyre_rotation",
			Type:        RuleTypeTyre,
			Title:       "Tyre Rotation & Pressure Check",
			Description: "Rotate tyres and check pressure/tread depth",
			Conditions: []Condition{
				{Kind: ConditionOdometer, Operator: OperatorGTE, Value: 5000, Combinator: CombinatorOr},
				{Kind: ConditionTime, Operator: OperatorGTE, Value: 120},
			},
			Recurrence:   RecurrenceRecurring,
			BasePriority: 70,
		},
		{
			ID:          "rule_service_6k",
			Type:        RuleTypeService,
			Title:       "6000 km Service",
			Description: "Comprehensive service (spark plug, air filter, brake check)",
			Conditions: []Condition{
				{Kind: ConditionOdometer, Operator: OperatorGTE, Value: 6000},
			},
			Recurrence:   RecurrenceRecurring,
			BasePriority: 95,
		},
		{
			ID:          "rule_brake_pads",
			Type:        RuleTypeBrake,
			Title:       "Brake Pad Inspection",
			Description: "Check brake pad wear and replace if needed",
			Conditions: []Condition{
				{Kind: ConditionOdometer, Operator: OperatorGTE, Value: 8000, Combinator: CombinatorOr},
				{Kind: ConditionTime, Operator: OperatorGTE, Value: 180},
			},
			Recurrence:   RecurrenceRecurring,
			BasePriority: 85,
		},
		{
			ID:          "rule_battery_check",
			Type:        RuleTypeBattery,
			Title:       "Battery Health Check",
			Description: "Test battery voltage and terminals",
			Conditions: []Condition{
				{Kind: ConditionTime, Operator: OperatorGTE, Value: 365},
			},
			Recurrence:   RecurrenceRecurring,
			BasePriority: 50,
		},
	}
}
