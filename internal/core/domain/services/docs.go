// Package services provides domain services that span aggregates.
//
// The package includes:
//   - Channel: the named real-time notification scopes (user, company,
//     conversation, order, tracking) and their wire names
//   - ChannelAuthorizer: the pure predicate table deciding whether a principal
//     may observe a channel, given the facts resolved for its entity
//   - ChannelsFor: the static mapping from domain events to the channels they
//     are broadcast on
package services
