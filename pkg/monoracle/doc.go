// Package monoracle reads the state of a Monoracle data feed contract.
//
// A Monoracle contract stores the latest payload fetched from an off-chain API
// together with the API's URL, headers and parameters, the wallet that
// registered the feed and the time of the last update. Fetch reads all of
// these accessors concurrently over a fresh read-only JSON-RPC connection and
// returns them as a Record. The payload is decoded as JSON when possible and
// kept as the raw on-chain string otherwise.
//
//	rec, err := monoracle.Fetch(ctx, "0xc3633482b735BDB78E2a8112EF7a4434F4A20024")
//	if err != nil {
//		return err
//	}
//	posts, err := monoracle.DecodeData[[]Post](rec)
package monoracle
