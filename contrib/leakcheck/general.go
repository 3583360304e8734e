package leakcheck

func EnableAll() {
	EnableConnTracking()
	EnableGoroutineTracking()
}

func ReportAll() bool {
	testsPassed := true
	if !ReportLeakedConns() {
		testsPassed = false
	}
	if !ReportLeakedGoroutines() {
		testsPassed = false
	}
	return testsPassed
}
