// Package models defines the core domain models for FairShare.
//
// # Models
//
//   - Person: a participant at the table
//   - ExpenseItem: a priced line on the tab with its assignment ledger
//   - BillConfig: fee and tax parameters shared by every participant
//   - Snapshot: the persisted shape of a whole bill session
//
// # Money
//
// Inputs are integer cents (Cents). Proportional splitting produces fractional
// cents, which are kept as float64 and only rounded for display.
//
// # Design Principles
//
// 1. **Plain data**: models carry no behaviour beyond validation and enum parsing
// 2. **IDs, not pointers**: relationships use ID strings
// 3. **Versioned persistence**: Snapshot carries a schema version from day one
package models
