package uax

// CallMethod invokes a single method on objectID. On success the callback
// receives the method's result including its output arguments.
func CallMethod(d Dispatcher, objectID, methodID NodeID, inputs []Variant, cb OperationCallback[CallMethodResult]) (uint32, error) {
	if cb == nil {
		cb = func(uint32, StatusCode, *CallMethodResult) {}
	}

	return OpsServices{Dispatcher: d}.SendCall(&CallRequest{
		MethodsToCall: []CallMethodRequest{{
			ObjectID:       objectID,
			MethodID:       methodID,
			InputArguments: inputs,
		}},
	}, func(requestID uint32, resp *CallResponse) {
		if status := resp.Header.ServiceResult; !status.IsGood() {
			cb(requestID, status, nil)
			return
		}

		if len(resp.Results) != 1 {
			cb(requestID, StatusBadUnexpectedError, nil)
			return
		}

		res := &resp.Results[0]
		if !res.StatusCode.IsGood() {
			cb(requestID, res.StatusCode, nil)
			return
		}

		cb(requestID, StatusGood, res)
	})
}
