// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type validationTestSuite struct {
	suite.Suite
}

func TestValidation(t *testing.T) {
	suite.Run(t, new(validationTestSuite))
}

func (s *validationTestSuite) TestNewChain() {
	s.Run("new chain without option", func() {
		chain := New()
		s.Assert().NotNil(chain)
		s.Assert().False(chain.failFast)
	})
	s.Run("new chain with options", func() {
		s.Assert().True(New(FailFast()).failFast)
		s.Assert().False(New(AllErrors()).failFast)
	})
}

func (s *validationTestSuite) TestAddValidator() {
	chain := New()
	s.Assert().Empty(chain.validators)
	chain.AddValidator(NewBooleanValidator(true, "")).AddAssertion(true, "")
	s.Assert().Len(chain.validators, 2)
}

func (s *validationTestSuite) TestValidate() {
	s.Run("with a passing chain", func() {
		err := New().
			AddValidator(NewEmptyStringValidator("namespace", "Users")).
			AddAssertion(true, "never").
			Validate()
		s.Assert().NoError(err)
	})
	s.Run("with FailFast option", func() {
		chain := New(FailFast()).
			AddValidator(NewEmptyStringValidator("namespace", " ")).
			AddAssertion(false, "endpoints must not be empty")
		err := chain.Validate()
		s.Assert().EqualError(err, "the [namespace] is required")
		s.Assert().Nil(chain.violations)
	})
	s.Run("with AllErrors option", func() {
		err := New(AllErrors()).
			AddValidator(NewEmptyStringValidator("namespace", "")).
			AddAssertion(false, "endpoints must not be empty").
			Validate()
		s.Assert().EqualError(err, "the [namespace] is required; endpoints must not be empty")
	})
}

func TestPatternValidator(t *testing.T) {
	const pattern = `^[A-Za-z0-9_./:-]+$`
	require.NoError(t, NewPatternValidator("namespace", pattern, "Users").Validate())
	require.NoError(t, NewPatternValidator("namespace", pattern, "/apps/users/").Validate())

	err := NewPatternValidator("namespace", pattern, "Us\x00ers").Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "namespace")
}

func TestTCPAddressValidator(t *testing.T) {
	t.Run("With happy path", func(t *testing.T) {
		assert.NoError(t, NewTCPAddressValidator("127.0.0.1:8080").Validate())
	})
	t.Run("With zero port", func(t *testing.T) {
		assert.NoError(t, NewTCPAddressValidator("0.0.0.0:0").Validate())
	})
	t.Run("With negative port", func(t *testing.T) {
		assert.Error(t, NewTCPAddressValidator("127.0.0.1:-1").Validate())
	})
	t.Run("With port out of range", func(t *testing.T) {
		assert.Error(t, NewTCPAddressValidator("127.0.0.1:655387").Validate())
	})
	t.Run("With missing host", func(t *testing.T) {
		assert.Error(t, NewTCPAddressValidator(":8080").Validate())
	})
	t.Run("With missing port", func(t *testing.T) {
		assert.Error(t, NewTCPAddressValidator("localhost").Validate())
	})
}
