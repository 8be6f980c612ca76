package acorn

import (
	"errors"
	"testing"
)

// Shared test types, constructors and assertion helpers used across test
// files.

// mustBuild calls t.Fatal if build fails.
func mustBuild(t *testing.T, c *Collection, opts ...BuildOption) *Provider {
	t.Helper()
	p, err := c.Build(opts...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return p
}

// mustBuildFactory calls t.Fatal if factory build fails.
func mustBuildFactory(t *testing.T, c *Collection, opts ...BuildOption) *ProviderFactory {
	t.Helper()
	f, err := c.BuildFactory(opts...)
	if err != nil {
		t.Fatalf("BuildFactory: %v", err)
	}
	return f
}

// captureErrors swaps in an error handler that records instead of aborting,
// restoring the previous handler when the test ends.
func captureErrors(t *testing.T) *[]error {
	t.Helper()
	var got []error
	prev := SetErrorHandler(func(err error) {
		got = append(got, err)
	})
	t.Cleanup(func() { SetErrorHandler(prev) })
	return &got
}

type testLogger struct{ Prefix string }
type testConfig struct{ DSN string }

type testDatabase struct {
	Config *testConfig
	Logger *testLogger
}

type testUserRepo struct {
	DB     *testDatabase
	Logger *testLogger
}

type testService interface {
	Name() string
}

type testUserService struct{ Repo *testUserRepo }

func (s *testUserService) Name() string { return "user" }

type testOrderService struct{ Logger *testLogger }

func (s *testOrderService) Name() string { return "order" }

type testCircA struct{ B *testCircB }
type testCircB struct{ C *testCircC }
type testCircC struct{ A *testCircA }

func registerLogger(c *Collection, lt Lifetime) {
	Register(c, lt, func() *testLogger { return &testLogger{Prefix: "app"} })
}

func registerConfig(c *Collection, lt Lifetime) {
	Register(c, lt, func() *testConfig { return &testConfig{DSN: "postgres://localhost"} })
}

func registerDatabase(c *Collection, lt Lifetime) {
	RegisterWith(c, lt, func(d Pair[Registered[*testConfig], Registered[*testLogger]]) *testDatabase {
		return &testDatabase{Config: d.First.Value(), Logger: d.Second.Value()}
	})
}

func registerUserRepo(c *Collection, lt Lifetime) {
	RegisterWith(c, lt, func(d Pair[Registered[*testDatabase], Registered[*testLogger]]) *testUserRepo {
		return &testUserRepo{DB: d.First.Value(), Logger: d.Second.Value()}
	})
}

// registerCircle registers the three-entry cycle A -> B -> C -> A.
func registerCircle(c *Collection) {
	RegisterWith(c, Transient, func(d Registered[*testCircB]) *testCircA { return &testCircA{B: d.Value()} })
	RegisterWith(c, Transient, func(d Registered[*testCircC]) *testCircB { return &testCircB{C: d.Value()} })
	RegisterWith(c, Transient, func(d Registered[*testCircA]) *testCircC { return &testCircC{A: d.Value()} })
}

// testClosable records its close in a shared order slice.
type testClosable struct {
	Name  string
	Order *[]string
}

func (c *testClosable) Close() error {
	if c.Order != nil {
		*c.Order = append(*c.Order, c.Name)
	}
	return nil
}

// testFailCloser implements io.Closer but returns an error.
type testFailCloser struct{}

func (f *testFailCloser) Close() error {
	return errors.New("close failed")
}
