package finance

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// CommandType is a typed string for identifying commands.
type CommandType string

// Command types accepted by the engine.
const (
	CmdAddTransaction       CommandType = "ADD_TRANSACTION"
	CmdUpdateTransaction    CommandType = "UPDATE_TRANSACTION"
	CmdDeleteTransaction    CommandType = "DELETE_TRANSACTION"
	CmdAddAccount           CommandType = "ADD_ACCOUNT"
	CmdRenameAccount        CommandType = "RENAME_ACCOUNT"
	CmdSetOpeningBalance    CommandType = "SET_OPENING_BALANCE"
	CmdAdjustAccountBalance CommandType = "ADJUST_ACCOUNT_BALANCE"
	CmdAddCategory          CommandType = "ADD_CATEGORY"
	CmdRenameCategory       CommandType = "RENAME_CATEGORY"
	CmdUpdateCategory       CommandType = "UPDATE_CATEGORY"
	CmdEnableCategory       CommandType = "ENABLE_CATEGORY"
	CmdDisableCategory      CommandType = "DISABLE_CATEGORY"
	CmdDeleteCategory       CommandType = "DELETE_CATEGORY"
	CmdUpdateBudget         CommandType = "UPDATE_BUDGET"
	CmdEnsureBudgetProfile  CommandType = "ENSURE_BUDGET_PROFILE"
	CmdAddPlanningCost      CommandType = "ADD_PLANNING_COST"
	CmdUpdatePlanningCost   CommandType = "UPDATE_PLANNING_COST"
	CmdDeletePlanningCost   CommandType = "DELETE_PLANNING_COST"
	CmdSetPlanningStatus    CommandType = "SET_PLANNING_STATUS"
	CmdPayPlanningCost      CommandType = "PAY_PLANNING_COST"
	CmdRecalculateBalances  CommandType = "RECALCULATE_BALANCES"
)

// ErrUnknownCommand is returned when decoding a command of an unknown type.
var ErrUnknownCommand = errors.New("unknown command")

// Command is a request to change the state. Its payload is the struct itself.
type Command interface {
	What() CommandType // What returns the command type.
}

// AddTransaction records a new income, expense or transfer.
//
// Category is a legacy category name, used when CategoryID is empty.
// Date defaults to today, CycleID to the cycle of Date.
type AddTransaction struct {
	Type        TransactionType  `json:"type,omitempty"`
	Amount      *decimal.Decimal `json:"amount"`
	FromAccount string           `json:"fromAccount,omitempty"`
	ToAccount   string           `json:"toAccount,omitempty"`
	CategoryID  string           `json:"categoryId,omitempty"`
	Category    string           `json:"category,omitempty"`
	Date        string           `json:"date,omitempty"`
	CycleID     CycleID          `json:"cycleId,omitempty"`
	Note        string           `json:"note,omitempty"`
}

// UpdateTransaction patches a transaction. Nil fields are left unchanged, an
// empty account id clears that side.
type UpdateTransaction struct {
	ID          string           `json:"id"`
	Type        *TransactionType `json:"type,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	FromAccount *string          `json:"fromAccount,omitempty"`
	ToAccount   *string          `json:"toAccount,omitempty"`
	CategoryID  *string          `json:"categoryId,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Date        *string          `json:"date,omitempty"`
	CycleID     *CycleID         `json:"cycleId,omitempty"`
	Note        *string          `json:"note,omitempty"`
}

// DeleteTransaction removes a transaction.
type DeleteTransaction struct {
	ID string `json:"id"`
}

// AddAccount creates an account. A positive Balance is recorded as the
// opening balance of the current cycle.
type AddAccount struct {
	Name    string           `json:"name"`
	Balance *decimal.Decimal `json:"balance,omitempty"`
}

// RenameAccount renames an account.
type RenameAccount struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SetOpeningBalance replaces the opening balance of an account for a cycle.
// A zero amount removes it.
type SetOpeningBalance struct {
	AccountID string           `json:"accountId"`
	CycleID   CycleID          `json:"cycleId,omitempty"`
	Amount    *decimal.Decimal `json:"amount"`
}

// AdjustAccountBalance shifts the base balance of an account so that its
// balance becomes TargetBalance.
type AdjustAccountBalance struct {
	AccountID     string           `json:"accountId"`
	TargetBalance *decimal.Decimal `json:"targetBalance"`
}

// AddCategory creates a category. ID is generated from the name when empty.
type AddCategory struct {
	ID   string       `json:"id,omitempty"`
	Name string       `json:"name"`
	Type CategoryType `json:"type,omitempty"`
}

// RenameCategory renames a category.
type RenameCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UpdateCategory renames and/or retypes a category.
type UpdateCategory struct {
	ID   string        `json:"id"`
	Name *string       `json:"name,omitempty"`
	Type *CategoryType `json:"type,omitempty"`
}

// EnableCategory marks a category as usable.
type EnableCategory struct {
	ID string `json:"id"`
}

// DisableCategory hides a category from new entries. Existing references stay.
type DisableCategory struct {
	ID string `json:"id"`
}

// DeleteCategory removes a category that nothing references.
type DeleteCategory struct {
	ID string `json:"id"`
}

// UpdateBudget sets the budget of a category for a cycle, creating the
// cycle's profile when needed. CycleID defaults to the current cycle.
type UpdateBudget struct {
	CycleID    CycleID          `json:"cycleId,omitempty"`
	CategoryID string           `json:"categoryId"`
	Amount     *decimal.Decimal `json:"amount"`
}

// EnsureBudgetProfile creates an empty budget profile for a cycle if it has none.
type EnsureBudgetProfile struct {
	CycleID CycleID `json:"cycleId"`
}

// AddPlanningCost creates a planning cost.
type AddPlanningCost struct {
	Name       string           `json:"name"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	CategoryID string           `json:"categoryId,omitempty"`
	BillingDay int              `json:"billingDay,omitempty"`
	CycleID    CycleID          `json:"cycleId,omitempty"`
	Status     PlanningStatus   `json:"status,omitempty"`
}

// UpdatePlanningCost patches a planning cost. Nil fields are left unchanged.
type UpdatePlanningCost struct {
	ID         string           `json:"id"`
	Name       *string          `json:"name,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	CategoryID *string          `json:"categoryId,omitempty"`
	BillingDay *int             `json:"billingDay,omitempty"`
	CycleID    *CycleID         `json:"cycleId,omitempty"`
	Status     *PlanningStatus  `json:"status,omitempty"`
}

// DeletePlanningCost removes a planning cost.
type DeletePlanningCost struct {
	ID string `json:"id"`
}

// SetPlanningStatus changes the status of a planning cost.
type SetPlanningStatus struct {
	ID     string         `json:"id"`
	Status PlanningStatus `json:"status"`
}

// PayPlanningCost records the expense paying a planning cost from an account
// and marks the cost done. Date defaults to today.
type PayPlanningCost struct {
	PlanningCostID string `json:"planningCostId"`
	AccountID      string `json:"accountId"`
	Date           string `json:"date,omitempty"`
}

// RecalculateBalancesCmd recomputes balances without changing anything else.
type RecalculateBalancesCmd struct{}

func (AddTransaction) What() CommandType         { return CmdAddTransaction }
func (UpdateTransaction) What() CommandType      { return CmdUpdateTransaction }
func (DeleteTransaction) What() CommandType      { return CmdDeleteTransaction }
func (AddAccount) What() CommandType             { return CmdAddAccount }
func (RenameAccount) What() CommandType          { return CmdRenameAccount }
func (SetOpeningBalance) What() CommandType      { return CmdSetOpeningBalance }
func (AdjustAccountBalance) What() CommandType   { return CmdAdjustAccountBalance }
func (AddCategory) What() CommandType            { return CmdAddCategory }
func (RenameCategory) What() CommandType         { return CmdRenameCategory }
func (UpdateCategory) What() CommandType         { return CmdUpdateCategory }
func (EnableCategory) What() CommandType         { return CmdEnableCategory }
func (DisableCategory) What() CommandType        { return CmdDisableCategory }
func (DeleteCategory) What() CommandType         { return CmdDeleteCategory }
func (UpdateBudget) What() CommandType           { return CmdUpdateBudget }
func (EnsureBudgetProfile) What() CommandType    { return CmdEnsureBudgetProfile }
func (AddPlanningCost) What() CommandType        { return CmdAddPlanningCost }
func (UpdatePlanningCost) What() CommandType     { return CmdUpdatePlanningCost }
func (DeletePlanningCost) What() CommandType     { return CmdDeletePlanningCost }
func (SetPlanningStatus) What() CommandType      { return CmdSetPlanningStatus }
func (PayPlanningCost) What() CommandType        { return CmdPayPlanningCost }
func (RecalculateBalancesCmd) What() CommandType { return CmdRecalculateBalances }

// newCommand returns a zero command of type t, or nil.
func newCommand(t CommandType) Command {
	switch t {
	case CmdAddTransaction:
		return &AddTransaction{}
	case CmdUpdateTransaction:
		return &UpdateTransaction{}
	case CmdDeleteTransaction:
		return &DeleteTransaction{}
	case CmdAddAccount:
		return &AddAccount{}
	case CmdRenameAccount:
		return &RenameAccount{}
	case CmdSetOpeningBalance:
		return &SetOpeningBalance{}
	case CmdAdjustAccountBalance:
		return &AdjustAccountBalance{}
	case CmdAddCategory:
		return &AddCategory{}
	case CmdRenameCategory:
		return &RenameCategory{}
	case CmdUpdateCategory:
		return &UpdateCategory{}
	case CmdEnableCategory:
		return &EnableCategory{}
	case CmdDisableCategory:
		return &DisableCategory{}
	case CmdDeleteCategory:
		return &DeleteCategory{}
	case CmdUpdateBudget:
		return &UpdateBudget{}
	case CmdEnsureBudgetProfile:
		return &EnsureBudgetProfile{}
	case CmdAddPlanningCost:
		return &AddPlanningCost{}
	case CmdUpdatePlanningCost:
		return &UpdatePlanningCost{}
	case CmdDeletePlanningCost:
		return &DeletePlanningCost{}
	case CmdSetPlanningStatus:
		return &SetPlanningStatus{}
	case CmdPayPlanningCost:
		return &PayPlanningCost{}
	case CmdRecalculateBalances:
		return &RecalculateBalancesCmd{}
	}
	return nil
}

// CommandTypes lists every command type the engine knows, in declaration order.
func CommandTypes() []CommandType {
	return []CommandType{
		CmdAddTransaction, CmdUpdateTransaction, CmdDeleteTransaction,
		CmdAddAccount, CmdRenameAccount, CmdSetOpeningBalance, CmdAdjustAccountBalance,
		CmdAddCategory, CmdRenameCategory, CmdUpdateCategory, CmdEnableCategory, CmdDisableCategory, CmdDeleteCategory,
		CmdUpdateBudget, CmdEnsureBudgetProfile,
		CmdAddPlanningCost, CmdUpdatePlanningCost, CmdDeletePlanningCost, CmdSetPlanningStatus, CmdPayPlanningCost,
		CmdRecalculateBalances,
	}
}

// deref returns the value pointed by a command returned by newCommand.
func deref(cmd Command) Command {
	switch c := cmd.(type) {
	case *AddTransaction:
		return *c
	case *UpdateTransaction:
		return *c
	case *DeleteTransaction:
		return *c
	case *AddAccount:
		return *c
	case *RenameAccount:
		return *c
	case *SetOpeningBalance:
		return *c
	case *AdjustAccountBalance:
		return *c
	case *AddCategory:
		return *c
	case *RenameCategory:
		return *c
	case *UpdateCategory:
		return *c
	case *EnableCategory:
		return *c
	case *DisableCategory:
		return *c
	case *DeleteCategory:
		return *c
	case *UpdateBudget:
		return *c
	case *EnsureBudgetProfile:
		return *c
	case *AddPlanningCost:
		return *c
	case *UpdatePlanningCost:
		return *c
	case *DeletePlanningCost:
		return *c
	case *SetPlanningStatus:
		return *c
	case *PayPlanningCost:
		return *c
	case *RecalculateBalancesCmd:
		return *c
	}
	return cmd
}

// DecodeCommand decodes a command from its `{"type": ..., "payload": {...}}` form.
// The payload may be omitted for commands that need none.
func DecodeCommand(data []byte) (Command, error) {
	var envelope struct {
		Type    CommandType     `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("could not identify command in %q: %w", string(data), err)
	}
	cmd := newCommand(envelope.Type)
	if cmd == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownCommand, envelope.Type)
	}
	payload := bytes.TrimSpace(envelope.Payload)
	if len(payload) > 0 && !bytes.Equal(payload, []byte("null")) {
		if err := json.Unmarshal(payload, cmd); err != nil {
			return nil, fmt.Errorf("invalid payload for %s: %w", envelope.Type, err)
		}
	}
	return deref(cmd), nil
}

// EncodeCommand encodes a command in its `{"type": ..., "payload": {...}}` form.
func EncodeCommand(cmd Command) ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", cmd.What())
	w.Append("payload", cmd)
	return w.MarshalJSON()
}
