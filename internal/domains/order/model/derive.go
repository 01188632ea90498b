package model

// Derive recomputes status and ready_to_pack from the lines of the current
// shipment batch. It is the single writer of those fields outside explicit
// transitions. Pure: mutates only the passed order, returns whether anything
// changed. Packed and cancelled orders are terminal for derivation; only
// explicit transitions move them.
//
// Completing the current batch never auto-advances current_shipment. The
// advance happens on MarkPacked so the operator confirms each shipment.
func Derive(order *Order, linesInCurrent []OrderLine) bool {
	if order.Status == StatusPacked || order.Status == StatusCancelled {
		return false
	}

	allDone := true
	anyProgress := false
	for i := range linesInCurrent {
		l := &linesInCurrent[i]
		if !l.Done() {
			allDone = false
		}
		if l.QtyPicked > 0 || l.QtyShort > 0 {
			anyProgress = true
		}
	}
	if len(linesInCurrent) == 0 {
		allDone = false
	}

	newStatus := order.Status
	newReady := order.ReadyToPack

	if allDone {
		newReady = true
		newStatus = StatusReadyToPack
	} else {
		newReady = false
		if anyProgress {
			newStatus = StatusPicking
		} else {
			newStatus = StatusOpen
		}
	}

	if newStatus == order.Status && newReady == order.ReadyToPack {
		return false
	}

	order.Status = newStatus
	order.ReadyToPack = newReady
	return true
}
