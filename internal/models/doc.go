// Package models defines the core domain models for the fleet settlement
// engine.
//
// # Model groups
//
//   - Period: a settlement window (monthly, quarterly or yearly) carrying an
//     explicit ordered list of the months it covers
//   - EarningRecord / ExpenseRecord: immutable raw inputs produced by the host
//     application; only "paid" earnings and "approved" expenses count
//   - Vehicle, Loan, Assignment: per-vehicle terms that drive the payout
//     waterfall and the obligation queues
//   - Obligation: one schedulable payable unit (an EMI installment or a rent
//     week), kept in a due-date-ascending queue per class
//   - WaterfallResult: the four-way split of one month's profit
//   - LedgerTransaction: one append-only settlement log entry; the latest
//     entry per (entity, type, period) determines paid state
//   - CashBalance: per-vehicle and company-aggregate running totals
//   - SettlementSession: explicit selection + penalty state passed into and
//     returned from engine calls (no shared mutable globals)
//
// # Design principles
//
//  1. **Append-only ledger**: LedgerTransaction fields are never mutated
//     after the row is written; corrections are new rows
//  2. **Exact money**: all monetary fields are decimal.Decimal, never float
//  3. **Avoid circular references**: relationships use ID strings, not
//     pointers between aggregates
//  4. **Required-field structs**: optional data (loan, assignment) is a nil
//     pointer, everything else is always present
package models
