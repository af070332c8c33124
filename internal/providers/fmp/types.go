package fmp

// fmpStockPeers is one element of the v4 stock_peers response.
type fmpStockPeers struct {
	Symbol    string   `json:"symbol"`
	PeersList []string `json:"peersList"`
}
