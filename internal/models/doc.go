// Package models defines the persisted domain records for BillBuddy.
//
// # Ownership
//
//   - Room: a group of members sharing expenses. Owns activities.
//   - Activity: one expense event with a payer. Owns items.
//   - ActivityItem: a line on the activity. Owns splits.
//   - ItemSplit: one participant's equal share of one item, plus a paid flag.
//
// Deleting an owner deletes everything beneath it.
//
// # Money
//
// Monetary inputs (prices, tax, service charge, discount) are non-negative int64 values in the
// currency's minor unit. Split shares are exact decimals (item total / participant count) so that
// rounding happens once, when results are presented, and never accumulates across splits.
//
// # Identity
//
// Participants are referenced by user ID strings. A participant must be a member of the room that
// owns the activity.
package models
