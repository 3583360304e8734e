package testutils

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/couchbaselabs/gocbconnstr/v2"
	"github.com/google/uuid"
	"github.com/opcuax/uacorex/contrib/leakcheck"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

var TestOpts TestOptions

type TestOptions struct {
	ServerAddrs       []string
	LongTest          bool
	SupportedFeatures []TestFeature
	RunName           string
	OriginalConnStr   string
}

// DefaultServerPort is the registered port of opc.tcp endpoints.
const DefaultServerPort = 4840

func addSupportedFeature(feat TestFeature) {
	if !slices.Contains(TestOpts.SupportedFeatures, feat) {
		TestOpts.SupportedFeatures = append(TestOpts.SupportedFeatures, feat)
	}
}
func removeSupportedFeature(feat TestFeature) {
	featIdx := slices.Index(TestOpts.SupportedFeatures, feat)
	if featIdx >= 0 {
		TestOpts.SupportedFeatures = slices.Delete(TestOpts.SupportedFeatures, featIdx, featIdx+1)
	}
}

func envFlagString(envName, name, value, usage string) *string {
	envValue := os.Getenv(envName)
	if envValue != "" {
		value = envValue
	}
	return flag.String(name, value, usage)
}

var connStr = envFlagString("UACXCONNSTR", "connstr", "",
	"Connection string of an OPC UA server to run long tests against")
var featsStr = envFlagString("UACXFEAT", "features", "",
	"A comma-delimited list of features to test")

func SetupTests(m *testing.M) {
	flag.Parse()

	if *connStr != "" && !testing.Short() {
		TestOpts.LongTest = true
		err := parseConnStr(*connStr)
		if err != nil {
			panic("failed to parse connection string")
		}
		TestOpts.OriginalConnStr = *connStr
	}

	// default supported features
	TestOpts.SupportedFeatures = []TestFeature{}

	if featsStr != nil && *featsStr != "" {
		featStrs := strings.Split(*featsStr, ",")
		for _, featStr := range featStrs {
			featStr = strings.TrimSpace(featStr)
			feat := TestFeature(strings.TrimLeft(featStr, "+-*"))

			if featStr == "*" {
				for _, feat := range AllTestFeatures {
					addSupportedFeature(feat)
				}
			} else if strings.HasPrefix(featStr, "-") {
				removeSupportedFeature(feat)
			} else {
				addSupportedFeature(feat)
			}
		}
	}

	TestOpts.RunName = strings.ReplaceAll(uuid.NewString(), "-", "")[0:8]

	leakcheck.EnableAll()

	result := m.Run()

	if !leakcheck.ReportAll() {
		result = 1
	}

	os.Exit(result)
}

func parseConnStr(connStr string) error {
	spec, err := gocbconnstr.Parse(connStr)
	if err != nil {
		return err
	}

	var addrs []string
	for _, specHost := range spec.Addresses {
		port := specHost.Port
		if port <= 0 {
			port = DefaultServerPort
		}
		addrs = append(addrs, fmt.Sprintf("%s:%d", specHost.Host, port))
	}

	TestOpts.ServerAddrs = addrs
	return nil
}

func SkipIfShortTest(t *testing.T) {
	if !TestOpts.LongTest {
		t.Skipf("skipping long test")
	}
}

func MakeTestLogger(t *testing.T) *zap.Logger {
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	return logger
}
