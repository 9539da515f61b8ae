// Package escrow implements the custody lifecycle of an order's payment:
// created, funded, then released to the carrier or refunded to the shipper,
// possibly through a dispute. A created escrow may be cancelled while the
// goods are undelivered.
package escrow
