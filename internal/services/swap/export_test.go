package swap

import "fusionswap/internal/services/vault"

// VaultOf exposes a swap's vault to the external tests.
func VaultOf(sw *Swap) *vault.Vault { return sw.vault }
