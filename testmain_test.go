package uacorex

import (
	"testing"

	"github.com/opcuax/uacorex/testutils"
)

func TestMain(m *testing.M) {
	testutils.SetupTests(m)
}
