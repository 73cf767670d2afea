// Package models defines the core domain models for Trolly.
//
// # Models
//
//   - User: a registered account, owned by the identity provider; this
//     engine reads ID/DisplayName and maintains GroupIDs as membership
//     changes.
//   - Group: a shared collection of members with roles. A group always
//     has at least one member; it is hard-deleted when the last member
//     leaves.
//   - Item: a shopping-list line item scoped to one group, carrying
//     price and a full append-only edit history.
//   - ExpenseSummary / UserContribution: derived settlement figures,
//     never persisted.
//
// # Design Principles
//
//  1. **Document shaped**: every persisted model round-trips through
//     JSON at the storage boundary. IDs live outside the document body
//     (tagged `json:"-"`) and are injected on decode.
//  2. **Append-only provenance**: Item.EditHistory only ever grows;
//     every mutation appends exactly one EditRecord.
//  3. **Avoid circular references**: relationships use ID strings, not
//     pointers.
package models
