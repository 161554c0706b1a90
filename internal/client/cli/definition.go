package cli

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/omnivault/internal/api"
	"github.com/goccy/go-yaml"
	"github.com/shopspring/decimal"
)

// vaultDefinition is the YAML document describing a vault's contents.
// Amounts and percentages are strings so they keep their exact decimal value.
//
//	beneficiaries:
//	  - name: Alice
//	    address: "0xA11CE"
//	assets:
//	  - token_id: 6f1c...
//	    amount: "100"
//	    allocations:
//	      "0xA11CE": "100"
type vaultDefinition struct {
	Beneficiaries []struct {
		Name    string `yaml:"name"`
		Address string `yaml:"address"`
	} `yaml:"beneficiaries"`
	Assets []struct {
		ID          string            `yaml:"id"`
		TokenID     string            `yaml:"token_id"`
		Amount      string            `yaml:"amount"`
		Allocations map[string]string `yaml:"allocations"`
	} `yaml:"assets"`
}

func loadVaultDefinition(path, vaultID string) (*api.VaultContentsRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseVaultDefinition(data, vaultID)
}

func parseVaultDefinition(data []byte, vaultID string) (*api.VaultContentsRequest, error) {
	var def vaultDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("invalid vault definition: %w", err)
	}

	req := &api.VaultContentsRequest{VaultID: vaultID}
	for _, b := range def.Beneficiaries {
		req.Beneficiaries = append(req.Beneficiaries, api.Beneficiary{Name: b.Name, Address: b.Address})
	}
	for i, as := range def.Assets {
		amount, err := parseAmount(fmt.Sprintf("assets[%d].amount", i), as.Amount)
		if err != nil {
			return nil, err
		}
		c := api.AssetCommitment{ID: as.ID, TokenID: as.TokenID, Amount: amount}
		if len(as.Allocations) > 0 {
			c.Allocations = make(map[string]decimal.Decimal, len(as.Allocations))
		}
		for addr, pct := range as.Allocations {
			p, err := parseAmount(fmt.Sprintf("assets[%d].allocations[%s]", i, addr), pct)
			if err != nil {
				return nil, err
			}
			c.Allocations[addr] = p
		}
		req.Assets = append(req.Assets, c)
	}
	return req, nil
}
