package network

import "github.com/ethereum/go-ethereum/common"

func addr(s string) *common.Address {
	a := common.HexToAddress(s)
	return &a
}

var bnb = NativeCurrency{Name: "BNB", Symbol: "BNB", Decimals: 18}
var tbnb = NativeCurrency{Name: "BNB", Symbol: "tBNB", Decimals: 18}

func allNetworks() []Descriptor {
	return []Descriptor{
		{
			Key:         Testnet,
			ChainID:     97,
			Name:        "BNB Smart Chain Testnet",
			Label:       "BSC Testnet",
			Description: "BNB Smart Chain test network",
			RPCURL:      "https://data-seed-prebsc-1-s1.bnbchain.org:8545",
			ExplorerURL: "https://testnet.bscscan.com",
			Currency:    tbnb,
			Enabled:     true,
			Contracts: map[Feature]*common.Address{
				Voting:       addr("0x8a64dFb64A71AfD00F926064E1f2a0B9a7cBe7dD"),
				Auction:      addr("0x00320016Ad572264a64C98142e51200E60f73bCE"),
				Lottery:      addr("0x9bb658a999a46d149262fe74d37894ac203ca493"),
				CrowdFunding: addr("0x96bbbef124fe87477244d8583f771fdf6c2f0ed6"),
			},
		},
		{
			Key:         Mainnet,
			ChainID:     56,
			Name:        "BSC Mainnet",
			Label:       "BSC Mainnet",
			Description: "BNB Smart Chain main network",
			RPCURL:      "https://bsc-dataseed.bnbchain.org",
			ExplorerURL: "https://bscscan.com",
			Currency:    bnb,
			Enabled:     false,
			Contracts:   map[Feature]*common.Address{},
		},
		{
			Key:         OpBNBTestnet,
			ChainID:     5611,
			Name:        "opBNB Testnet",
			Label:       "opBNB Testnet",
			Description: "opBNB layer-2 test network",
			RPCURL:      "https://opbnb-testnet-rpc.bnbchain.org",
			ExplorerURL: "https://testnet.opbnbscan.com",
			Currency:    tbnb,
			Enabled:     true,
			Contracts: map[Feature]*common.Address{
				Voting:       addr("0x8a64dFb64A71AfD00F926064E1f2a0B9a7cBe7dD"),
				Auction:      addr("0xea2c7377fd34366878516bd68ccb469016b529d9"),
				Lottery:      addr("0x59c9ca4D0fd69674705043525FF0e063F9A6F13E"),
				CrowdFunding: addr("0x9C8ca8Cb9eC9886f2cbD9917F083D561e773cF28"),
			},
		},
		{
			Key:         OpBNBMainnet,
			ChainID:     204,
			Name:        "opBNB Mainnet",
			Label:       "opBNB Mainnet",
			Description: "opBNB layer-2 main network",
			RPCURL:      "https://opbnb-mainnet-rpc.bnbchain.org",
			ExplorerURL: "https://opbnbscan.com",
			Currency:    bnb,
			Enabled:     false,
			Contracts:   map[Feature]*common.Address{},
		},
	}
}
