// Package models defines the core domain models for the ledger.
//
// # Models
//
//   - User: Registered account; identified by a UUID
//   - Group: Set of users sharing expenses (membership is the UserGroups relation)
//   - Expense: Amount paid by one member and split among others
//   - Payment: Recorded transfer of money between two members of a group
//   - GroupLedger: Consistent snapshot of a group's expenses and payments
//
// # Design Principles
//
//  1. **Money is decimal**: every amount is a decimal.Decimal, never a float
//  2. **Expenses are the source of truth**: payments are additive history and never
//     rewrite expense rows
//  3. **Avoid circular references**: use ID strings instead of pointers for relationships
//  4. **Timestamps are Unix seconds**
package models
