package keepbook

// Transaction deduplication collapses records that represent the same
// real-world event but arrived under different identifiers. It is an
// incremental union-find over alias keys with last-write-wins contents at
// each live node.

// rotatingIDMarker flags records from sources that issue session-scoped
// transaction ids. Its presence in the synchronizer data enables alias
// matching beyond the raw id.
const rotatingIDMarker = "brokerageAuthorizationId"

// aliasFields are the synchronizer-data fields that can carry an
// alternative identifier for the same event.
var aliasFields = []string{"externalReferenceId", "tradeId", "orderId"}

// aliasKeys derives the keys under which a transaction can be recognized.
// The raw id always contributes one key. Each non-empty alias field
// contributes two: one qualified by the field, and one qualified only by
// provenance so the same value matches across fields.
func aliasKeys(tx Transaction) []string {
	keys := []string{"id:" + tx.ID}
	if _, rotating := tx.SynchronizerData[rotatingIDMarker]; !rotating {
		return keys
	}
	for _, field := range aliasFields {
		value := tx.SynchronizerData[field]
		if value == "" {
			continue
		}
		keys = append(keys, "field:"+field+":"+value, "alias:"+value)
	}
	return keys
}

// DedupeTransactions merges transactions that represent the same event,
// keeping the last occurrence's full contents at the position of the
// first surviving slot for that event. Transactions with no recognizable
// alias are always their own unique event; the input is never mutated.
func DedupeTransactions(txs []Transaction) []Transaction {
	// Slot arena: merged-away slots are tombstoned (nil) instead of removed
	// so slot indexes stay valid for the whole pass.
	slots := make([]*Transaction, 0, len(txs))
	keyToSlot := make(map[string]int)
	ownedKeys := make([]map[string]struct{}, 0, len(txs)) // per slot, the keys it answers to

	register := func(slot int, keys ...string) {
		for _, key := range keys {
			keyToSlot[key] = slot
			ownedKeys[slot][key] = struct{}{}
		}
	}

	for _, tx := range txs {
		tx := tx
		keys := aliasKeys(tx)

		target := -1
		var merged []int
		for _, key := range keys {
			i, ok := keyToSlot[key]
			if !ok || slots[i] == nil {
				continue
			}
			switch {
			case target == -1 || i < target:
				if target != -1 {
					merged = append(merged, target)
				}
				target = i
			case i != target:
				merged = append(merged, i)
			}
		}

		if target == -1 {
			// Unseen event: append as a new slot.
			slots = append(slots, &tx)
			ownedKeys = append(ownedKeys, make(map[string]struct{}))
			register(len(slots)-1, keys...)
			continue
		}

		// Last write wins at the lowest matching slot; every other matched
		// slot is tombstoned and its keys redirected to the target.
		slots[target] = &tx
		for _, i := range merged {
			if slots[i] == nil {
				continue // already merged through an earlier key
			}
			slots[i] = nil
			for key := range ownedKeys[i] {
				keyToSlot[key] = target
				ownedKeys[target][key] = struct{}{}
			}
			ownedKeys[i] = nil
		}
		register(target, keys...)
	}

	out := make([]Transaction, 0, len(slots))
	for _, slot := range slots {
		if slot != nil {
			out = append(out, *slot)
		}
	}
	return out
}
