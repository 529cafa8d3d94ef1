// Package models defines the core domain models for ödeme takip.
//
// # Models
//
//   - User: registered account that owns lists
//   - List: named collection of athletes (at least one per user)
//   - Athlete: member of exactly one list with a monthly PaymentState
//   - RosterEvent: change notification for one athlete row
//
// # Design Principles
//
//  1. Relationships use ID strings instead of pointers
//  2. PaymentState always carries every month of the fixed calendar
//     (see package calendar)
//  3. Timestamps are Unix seconds, except RosterEvent.At which is Unix
//     nanoseconds so that concurrent writes order deterministically
package models
