package core_test

import (
	"errors"
	"testing"

	"warehouseledger/internal/core"
)

func TestAppError_ErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := &core.AppError{Kind: core.KindInternal, Message: "failed to append ledger entry", Cause: cause}

	want := "failed to append ledger entry: connection reset"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestAppError_ErrorMessageWithoutCause(t *testing.T) {
	err := &core.AppError{Kind: core.KindBadRequest, Message: "quantity must be positive"}

	if err.Error() != "quantity must be positive" {
		t.Errorf("expected message alone when there's no cause, got %q", err.Error())
	}
}

func TestAppError_UnwrapExposesCause(t *testing.T) {
	cause := errors.New("root cause")
	err := &core.AppError{Kind: core.KindInternal, Message: "wrapped", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to see through AppError to its cause")
	}
}

func TestAppError_KindDistinguishesCategories(t *testing.T) {
	var target *core.AppError
	err := error(&core.AppError{Kind: core.KindNotFound, Message: "item not found"})

	if !errors.As(err, &target) {
		t.Fatal("expected errors.As to match *core.AppError")
	}
	if target.Kind != core.KindNotFound {
		t.Errorf("expected KindNotFound, got %s", target.Kind)
	}
}
