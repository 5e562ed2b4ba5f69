package config

import "time"

// Timeouts and intervals used across cmd and the panels.
const (
	PollInterval        = 15 * time.Second // crowdfunding background refresh
	ReceiptPoll         = 2 * time.Second  // eth_getTransactionReceipt polling
	TxConfirmTimeout    = 3 * time.Minute  // standard transaction confirmation wait
	ReadTimeout         = 15 * time.Second // one projector run
	WalletPromptTimeout = 2 * time.Minute  // one remote wallet request
)
