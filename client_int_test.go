package uacorex

import (
	"context"
	"testing"
	"time"

	"github.com/opcuax/uacorex/testutils"
	"github.com/opcuax/uacorex/uax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNodeObjectsFolder      = uax.NewNumericNodeID(0, 85)
	testNodeServer             = uax.NewNumericNodeID(0, 2253)
	testNodeServerStatusState  = uax.NewNumericNodeID(0, 2259)
	testNodeGetMonitoredItems  = uax.NewNumericNodeID(0, 11492)
	testNodeServerServerArray  = uax.NewNumericNodeID(0, 2254)
	testNodeServerNamespaceArr = uax.NewNumericNodeID(0, 2255)
)

func newIntTestClient(t *testing.T, config *ClientConfig) *Client {
	testutils.SkipIfShortTest(t)
	require.NotEmpty(t, testutils.TestOpts.ServerAddrs)

	if config == nil {
		config = &ClientConfig{}
	}
	config.Endpoint = testutils.TestOpts.ServerAddrs[0]
	config.Logger = testutils.MakeTestLogger(t)

	cli, err := NewClient(context.Background(), config)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = cli.Close()
	})

	require.Eventually(t, func() bool {
		_, ok := cli.Renewal().Token()
		return ok
	}, 10*time.Second, 10*time.Millisecond)

	return cli
}

func TestIntReadServerState(t *testing.T) {
	cli := newIntTestClient(t, nil)

	ch, cb := opResultCallback[uax.DataValue]()
	_, err := uax.ReadDataValue(cli, testNodeServerStatusState, uax.AttributeIDValue, cb)
	require.NoError(t, err)

	res := waitOpResult(t, ch)
	require.Equal(t, uax.StatusGood, res.Status)
	require.NotNil(t, res.Value)
	assert.NotNil(t, res.Value.Value)
	assert.False(t, res.Value.ServerTimestamp.IsZero())
}

func TestIntReadArrays(t *testing.T) {
	cli := newIntTestClient(t, nil)

	for _, nodeID := range []uax.NodeID{testNodeServerServerArray, testNodeServerNamespaceArr} {
		ch, cb := opResultCallback[uax.Variant]()
		_, err := uax.ReadAttribute(cli, nodeID, uax.AttributeValue, cb)
		require.NoError(t, err)

		res := waitOpResult(t, ch)
		require.Equal(t, uax.StatusGood, res.Status, nodeID.String())
		assert.True(t, res.Value.IsArray, nodeID.String())
	}
}

func TestIntReadUnknownNode(t *testing.T) {
	cli := newIntTestClient(t, nil)

	ch, cb := opResultCallback[uax.LocalizedText]()
	_, err := uax.ReadAttribute(cli, uax.NewStringNodeID(1, "does-not-exist-"+testutils.TestOpts.RunName), uax.AttributeDisplayName, cb)
	require.NoError(t, err)

	res := waitOpResult(t, ch)
	assert.Equal(t, uax.StatusBadNodeIDUnknown, res.Status)
	assert.Nil(t, res.Value)
}

func TestIntCallMethod(t *testing.T) {
	testutils.SkipIfUnsupportedFeature(t, testutils.TestFeatureMethodCall)

	cli := newIntTestClient(t, nil)

	ch, cb := opResultCallback[uax.CallMethodResult]()
	_, err := uax.CallMethod(cli, testNodeServer, testNodeGetMonitoredItems,
		[]uax.Variant{uax.NewVariant(uint32(0))}, cb)
	require.NoError(t, err)

	res := waitOpResult(t, ch)
	// no subscription with id 0 exists, but the call must still round-trip
	assert.NotEqual(t, uax.StatusBadTimeout, res.Status)
}

func TestIntAddObjectNode(t *testing.T) {
	testutils.SkipIfUnsupportedFeature(t, testutils.TestFeatureNodeManagement)

	cli := newIntTestClient(t, nil)

	ch, cb := opResultCallback[uax.NodeID]()
	_, err := uax.AddObjectNode(cli, uax.NodeTarget{
		ParentNodeID:    testNodeObjectsFolder,
		ReferenceTypeID: uax.ReferenceTypeOrganizes,
		BrowseName: uax.QualifiedName{
			NamespaceIndex: 1,
			Name:           "uacorex-" + testutils.TestOpts.RunName,
		},
	}, uax.ObjectAttributes{}, cb)
	require.NoError(t, err)

	res := waitOpResult(t, ch)
	require.Equal(t, uax.StatusGood, res.Status)
	require.NotNil(t, res.Value)
	assert.False(t, res.Value.IsNull())
}

func TestIntCompression(t *testing.T) {
	testutils.SkipIfUnsupportedFeature(t, testutils.TestFeatureCompression)

	cli := newIntTestClient(t, &ClientConfig{
		EnableCompression:  true,
		CompressionMinSize: 1,
	})

	req := &uax.ReadRequest{}
	for i := 0; i < 64; i++ {
		req.NodesToRead = append(req.NodesToRead, uax.ReadValueID{
			NodeID:      testNodeServerStatusState,
			AttributeID: uax.AttributeIDValue,
		})
	}

	respCh := make(chan *uax.ReadResponse, 1)
	_, err := uax.OpsServices{Dispatcher: cli}.SendRead(req, func(requestID uint32, resp *uax.ReadResponse) {
		respCh <- resp
	})
	require.NoError(t, err)

	select {
	case resp := <-respCh:
		require.Equal(t, uax.StatusGood, resp.Header.ServiceResult)
		assert.Len(t, resp.Results, 64)
	case <-time.After(10 * time.Second):
		require.Fail(t, "read did not complete")
	}
}
