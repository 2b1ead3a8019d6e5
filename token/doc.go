// Package token verifies keychain-signed grant assertions. The hosted
// authorization service can deliver a session grant as a compact JWS instead
// of bare JSON; verifying that signature is what upgrades a stored policy
// snapshot from "requested" to "service-confirmed".
//
// Verification only. This package never signs: the holder has no business
// minting grants.
package token
