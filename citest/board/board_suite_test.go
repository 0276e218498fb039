package board_test

import (
	"context"
	"testing"

	"github.com/joho/godotenv"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/projboard/projboard/citest/testutil"
	"github.com/projboard/projboard/internal/client"
)

var (
	testServer *testutil.TestServer
	api        *client.Client
	ctx        context.Context
)

func TestBoard(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Board Suite")
}

var _ = BeforeSuite(func() {
	_ = godotenv.Load("../../.env")

	var err error
	testServer, err = testutil.StartTestServer()
	Expect(err).NotTo(HaveOccurred(), "Failed to start test server")

	api = testServer.Client()
	ctx = context.Background()
})

var _ = AfterSuite(func() {
	if testServer != nil {
		Expect(testServer.Stop()).To(Succeed())
	}
})
