package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/ledger-backend/internal/adapter/repository/memory"
	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock advances one second on every reading
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newMemoryService() *Service {
	store := memory.NewStore()
	return NewService(store.Accounts(), store.Transactions(), &stepClock{now: testNow})
}

func deposit(t *testing.T, s *Service, id uuid.UUID, amount int64) {
	t.Helper()
	_, err := s.RecordTransaction(context.Background(), RecordTransactionInput{
		AccountID: id,
		Type:      domain.TransactionTypeDeposit,
		Amount:    decimal.NewFromInt(amount),
	})
	require.NoError(t, err)
}

func balanceOf(t *testing.T, s *Service, id uuid.UUID) decimal.Decimal {
	t.Helper()
	account, err := s.GetAccount(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, account)
	return account.Balance
}

func historySum(t *testing.T, s *Service, id uuid.UUID) decimal.Decimal {
	t.Helper()
	history, err := s.GetTransactionHistory(context.Background(), id)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, h := range history {
		if h.Type == domain.TransactionTypeWithdrawal {
			sum = sum.Sub(h.Amount)
		} else {
			sum = sum.Add(h.Amount)
		}
	}
	return sum
}

func TestScenario_WithdrawalBeyondBalanceIsRejected(t *testing.T) {
	ctx := context.Background()
	service := newMemoryService()

	a, err := service.CreateAccount(ctx, "A")
	require.NoError(t, err)
	assert.True(t, a.Balance.IsZero())

	deposit(t, service, a.ID, 100)
	assert.True(t, balanceOf(t, service, a.ID).Equal(decimal.NewFromInt(100)))

	_, err = service.RecordTransaction(ctx, RecordTransactionInput{
		AccountID: a.ID,
		Type:      domain.TransactionTypeWithdrawal,
		Amount:    decimal.NewFromInt(150),
	})

	var insufficient *domain.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, a.ID, insufficient.AccountID)
	assert.True(t, insufficient.Balance.Equal(decimal.NewFromInt(100)))
	assert.True(t, insufficient.Amount.Equal(decimal.NewFromInt(150)))
	assert.True(t, balanceOf(t, service, a.ID).Equal(decimal.NewFromInt(100)))

	history, err := service.GetTransactionHistory(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestScenario_TransferBetweenAccounts(t *testing.T) {
	ctx := context.Background()
	service := newMemoryService()

	a, err := service.CreateAccount(ctx, "A")
	require.NoError(t, err)
	b, err := service.CreateAccount(ctx, "B")
	require.NoError(t, err)
	deposit(t, service, a.ID, 100)

	result, err := service.Transfer(ctx, TransferInput{
		FromAccountID: a.ID,
		ToAccountID:   b.ID,
		Amount:        decimal.NewFromInt(40),
		Description:   "rent share",
	})
	require.NoError(t, err)

	assert.Equal(t, a.ID, result.Withdrawal.AccountID)
	assert.Equal(t, b.ID, result.Deposit.AccountID)
	assert.Equal(t, result.Withdrawal.Description, result.Deposit.Description)
	assert.True(t, result.Withdrawal.Amount.Equal(result.Deposit.Amount))

	assert.True(t, balanceOf(t, service, a.ID).Equal(decimal.NewFromInt(60)))
	assert.True(t, balanceOf(t, service, b.ID).Equal(decimal.NewFromInt(40)))

	historyA, err := service.GetTransactionHistory(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, historyA, 2)
	assert.Equal(t, domain.TransactionTypeWithdrawal, historyA[0].Type)
	assert.True(t, historyA[0].Amount.Equal(decimal.NewFromInt(40)))

	historyB, err := service.GetTransactionHistory(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, historyB, 1)
	assert.Equal(t, domain.TransactionTypeDeposit, historyB[0].Type)
	assert.True(t, historyB[0].Amount.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, "rent share", historyB[0].Description)
}

func TestScenario_BalanceMatchesHistory(t *testing.T) {
	ctx := context.Background()
	service := newMemoryService()

	a, err := service.CreateAccount(ctx, "A")
	require.NoError(t, err)

	moves := []struct {
		txType domain.TransactionType
		amount string
	}{
		{domain.TransactionTypeDeposit, "10.10"},
		{domain.TransactionTypeDeposit, "0.20"},
		{domain.TransactionTypeWithdrawal, "5.05"},
		{domain.TransactionTypeDeposit, "100"},
		{domain.TransactionTypeWithdrawal, "0.25"},
	}
	for _, m := range moves {
		_, err := service.RecordTransaction(ctx, RecordTransactionInput{
			AccountID: a.ID,
			Type:      m.txType,
			Amount:    decimal.RequireFromString(m.amount),
		})
		require.NoError(t, err)
	}

	balance := balanceOf(t, service, a.ID)
	assert.Equal(t, "105", balance.String())
	assert.True(t, balance.Equal(historySum(t, service, a.ID)))
}

func TestScenario_HistoryIsNewestFirstAndIsolated(t *testing.T) {
	ctx := context.Background()
	service := newMemoryService()

	a, err := service.CreateAccount(ctx, "A")
	require.NoError(t, err)
	b, err := service.CreateAccount(ctx, "B")
	require.NoError(t, err)

	deposit(t, service, a.ID, 1)
	deposit(t, service, b.ID, 2)
	deposit(t, service, a.ID, 3)
	deposit(t, service, b.ID, 4)
	deposit(t, service, a.ID, 5)

	history, err := service.GetTransactionHistory(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].Amount.Equal(decimal.NewFromInt(5)))
	assert.True(t, history[1].Amount.Equal(decimal.NewFromInt(3)))
	assert.True(t, history[2].Amount.Equal(decimal.NewFromInt(1)))
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i-1].Timestamp.After(history[i].Timestamp))
	}
}

func TestScenario_UnknownAccount(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := NewService(store.Accounts(), store.Transactions(), &stepClock{now: testNow})
	missing := uuid.New()

	account, err := service.GetAccount(ctx, missing)
	assert.NoError(t, err)
	assert.Nil(t, account)

	_, err = service.RecordTransaction(ctx, RecordTransactionInput{
		AccountID: missing,
		Type:      domain.TransactionTypeDeposit,
		Amount:    decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	all, err := store.Transactions().GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTransfer_MissingAccountLeavesBalancesUntouched(t *testing.T) {
	ctx := context.Background()
	service := newMemoryService()

	a, err := service.CreateAccount(ctx, "A")
	require.NoError(t, err)
	deposit(t, service, a.ID, 100)
	missing := uuid.New()

	_, err = service.Transfer(ctx, TransferInput{FromAccountID: a.ID, ToAccountID: missing, Amount: decimal.NewFromInt(10)})
	var notFound *domain.AccountNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, missing, notFound.AccountID)

	_, err = service.Transfer(ctx, TransferInput{FromAccountID: missing, ToAccountID: a.ID, Amount: decimal.NewFromInt(10)})
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, missing, notFound.AccountID)

	assert.True(t, balanceOf(t, service, a.ID).Equal(decimal.NewFromInt(100)))
	history, err := service.GetTransactionHistory(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestTransfer_InsufficientFundsWritesNothing(t *testing.T) {
	ctx := context.Background()
	service := newMemoryService()

	a, err := service.CreateAccount(ctx, "A")
	require.NoError(t, err)
	b, err := service.CreateAccount(ctx, "B")
	require.NoError(t, err)
	deposit(t, service, a.ID, 30)

	_, err = service.Transfer(ctx, TransferInput{FromAccountID: a.ID, ToAccountID: b.ID, Amount: decimal.NewFromInt(31)})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.True(t, balanceOf(t, service, a.ID).Equal(decimal.NewFromInt(30)))
	assert.True(t, balanceOf(t, service, b.ID).IsZero())
	historyB, err := service.GetTransactionHistory(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, historyB)
}

func TestTransfer_RejectsNonPositiveAmount(t *testing.T) {
	service := newMemoryService()

	_, err := service.Transfer(context.Background(), TransferInput{
		FromAccountID: uuid.New(),
		ToAccountID:   uuid.New(),
		Amount:        decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestTransfer_SameAccountNetsToZero(t *testing.T) {
	ctx := context.Background()
	service := newMemoryService()

	a, err := service.CreateAccount(ctx, "A")
	require.NoError(t, err)
	deposit(t, service, a.ID, 50)

	result, err := service.Transfer(ctx, TransferInput{FromAccountID: a.ID, ToAccountID: a.ID, Amount: decimal.NewFromInt(50)})
	require.NoError(t, err)
	assert.Equal(t, a.ID, result.Withdrawal.AccountID)
	assert.Equal(t, a.ID, result.Deposit.AccountID)

	assert.True(t, balanceOf(t, service, a.ID).Equal(decimal.NewFromInt(50)))
	history, err := service.GetTransactionHistory(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	// The funds check still applies to the source balance
	_, err = service.Transfer(ctx, TransferInput{FromAccountID: a.ID, ToAccountID: a.ID, Amount: decimal.NewFromInt(51)})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

// failingRecords rejects records of one type for one account
type failingRecords struct {
	domain.TransactionRepository
	accountID uuid.UUID
	txType    domain.TransactionType
	err       error
}

func (f *failingRecords) Add(ctx context.Context, tx *domain.Transaction) error {
	if tx.AccountID == f.accountID && tx.Type == f.txType {
		return f.err
	}
	return f.TransactionRepository.Add(ctx, tx)
}

func TestTransfer_FailedDepositLegIsReversed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	base := NewService(store.Accounts(), store.Transactions(), &stepClock{now: testNow})

	a, err := base.CreateAccount(ctx, "A")
	require.NoError(t, err)
	b, err := base.CreateAccount(ctx, "B")
	require.NoError(t, err)
	deposit(t, base, a.ID, 100)

	storeDown := errors.New("disk full")
	service := NewService(
		store.Accounts(),
		&failingRecords{TransactionRepository: store.Transactions(), accountID: b.ID, txType: domain.TransactionTypeDeposit, err: storeDown},
		&stepClock{now: testNow.Add(time.Hour)},
	)

	_, err = service.Transfer(ctx, TransferInput{FromAccountID: a.ID, ToAccountID: b.ID, Amount: decimal.NewFromInt(40)})
	assert.ErrorIs(t, err, storeDown)

	assert.True(t, balanceOf(t, base, a.ID).Equal(decimal.NewFromInt(100)))
	assert.True(t, balanceOf(t, base, b.ID).IsZero())

	historyA, err := base.GetTransactionHistory(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, historyA, 3)
	reversal := historyA[0]
	assert.Equal(t, domain.TransactionTypeDeposit, reversal.Type)
	assert.True(t, reversal.Amount.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, "reversal of "+historyA[1].ID.String(), reversal.Description)
	assert.True(t, balanceOf(t, base, a.ID).Equal(historySum(t, base, a.ID)))

	historyB, err := base.GetTransactionHistory(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, historyB)
}

func TestTransfer_FailedWithdrawalLegIsReversed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	base := NewService(store.Accounts(), store.Transactions(), &stepClock{now: testNow})

	a, err := base.CreateAccount(ctx, "A")
	require.NoError(t, err)
	b, err := base.CreateAccount(ctx, "B")
	require.NoError(t, err)
	deposit(t, base, a.ID, 100)

	storeDown := errors.New("disk full")
	service := NewService(
		store.Accounts(),
		&failingRecords{TransactionRepository: store.Transactions(), accountID: a.ID, txType: domain.TransactionTypeWithdrawal, err: storeDown},
		&stepClock{now: testNow.Add(time.Hour)},
	)

	_, err = service.Transfer(ctx, TransferInput{FromAccountID: a.ID, ToAccountID: b.ID, Amount: decimal.NewFromInt(40)})
	assert.ErrorIs(t, err, storeDown)

	assert.True(t, balanceOf(t, base, a.ID).Equal(decimal.NewFromInt(100)))
	assert.True(t, balanceOf(t, base, b.ID).IsZero())

	historyA, err := base.GetTransactionHistory(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, historyA, 1)

	historyB, err := base.GetTransactionHistory(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, historyB, 2)
	reversal := historyB[0]
	assert.Equal(t, domain.TransactionTypeWithdrawal, reversal.Type)
	assert.True(t, reversal.Amount.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, "reversal of "+historyB[1].ID.String(), reversal.Description)
	assert.True(t, balanceOf(t, base, b.ID).Equal(historySum(t, base, b.ID)))
}

// cancelAfterUpdate fails once ctx is done, as database/sql does,
// and cancels ctx right after every balance write.
type cancelAfterUpdate struct {
	domain.AccountRepository
	cancel context.CancelFunc
}

func (r *cancelAfterUpdate) Update(ctx context.Context, account *domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.AccountRepository.Update(ctx, account)
	r.cancel()
	return err
}

// contextAwareTransactions fails once ctx is done, as database/sql does
type contextAwareTransactions struct {
	domain.TransactionRepository
}

func (r *contextAwareTransactions) Add(ctx context.Context, tx *domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.TransactionRepository.Add(ctx, tx)
}

func TestRecordTransaction_CancelledAfterBalanceWriteRestoresBalance(t *testing.T) {
	store := memory.NewStore()
	base := NewService(store.Accounts(), store.Transactions(), &stepClock{now: testNow})

	a, err := base.CreateAccount(context.Background(), "A")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	service := NewService(
		&cancelAfterUpdate{AccountRepository: store.Accounts(), cancel: cancel},
		&contextAwareTransactions{TransactionRepository: store.Transactions()},
		&stepClock{now: testNow},
	)

	_, err = service.RecordTransaction(ctx, RecordTransactionInput{
		AccountID: a.ID,
		Type:      domain.TransactionTypeDeposit,
		Amount:    decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, err.Error(), "failed to restore")

	assert.True(t, balanceOf(t, base, a.ID).IsZero())
	assert.True(t, historySum(t, base, a.ID).IsZero())
}

func TestScenario_CommitterKeepsBalanceEqualToHistory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := NewService(store.Accounts(), store.Transactions(), &stepClock{now: testNow}, WithCommitter(store.Committer()))

	a, err := service.CreateAccount(ctx, "A")
	require.NoError(t, err)
	b, err := service.CreateAccount(ctx, "B")
	require.NoError(t, err)

	deposit(t, service, a.ID, 100)
	_, err = service.Transfer(ctx, TransferInput{FromAccountID: a.ID, ToAccountID: b.ID, Amount: decimal.NewFromInt(30)})
	require.NoError(t, err)
	_, err = service.Transfer(ctx, TransferInput{FromAccountID: b.ID, ToAccountID: b.ID, Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	assert.True(t, balanceOf(t, service, a.ID).Equal(decimal.NewFromInt(70)))
	assert.True(t, balanceOf(t, service, b.ID).Equal(decimal.NewFromInt(30)))
	for _, id := range []uuid.UUID{a.ID, b.ID} {
		assert.True(t, balanceOf(t, service, id).Equal(historySum(t, service, id)))
	}
}

func TestConcurrentDeposits_NoLostUpdates(t *testing.T) {
	ctx := context.Background()
	service := newMemoryService()

	a, err := service.CreateAccount(ctx, "A")
	require.NoError(t, err)

	const n = 200
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.RecordTransaction(ctx, RecordTransactionInput{
				AccountID: a.ID,
				Type:      domain.TransactionTypeDeposit,
				Amount:    decimal.NewFromInt(10),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	assert.True(t, balanceOf(t, service, a.ID).Equal(decimal.NewFromInt(n*10)))
	history, err := service.GetTransactionHistory(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, history, n)
	assert.Equal(t, 0, service.locks.size())
}

func TestConcurrentWithdrawals_NeverOverdraw(t *testing.T) {
	ctx := context.Background()
	service := newMemoryService()

	a, err := service.CreateAccount(ctx, "A")
	require.NoError(t, err)
	deposit(t, service, a.ID, 50)

	const n = 100
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.RecordTransaction(ctx, RecordTransactionInput{
				AccountID: a.ID,
				Type:      domain.TransactionTypeWithdrawal,
				Amount:    decimal.NewFromInt(1),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if errors.Is(err, domain.ErrInsufficientFunds) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, succeeded)
	assert.Equal(t, 50, rejected)
	assert.True(t, balanceOf(t, service, a.ID).IsZero())
}

func TestConcurrentOppositeTransfers_ConserveTotal(t *testing.T) {
	ctx := context.Background()
	service := newMemoryService()

	a, err := service.CreateAccount(ctx, "A")
	require.NoError(t, err)
	b, err := service.CreateAccount(ctx, "B")
	require.NoError(t, err)
	deposit(t, service, a.ID, 1000)
	deposit(t, service, b.ID, 1000)

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = service.Transfer(ctx, TransferInput{FromAccountID: a.ID, ToAccountID: b.ID, Amount: decimal.NewFromInt(7)})
		}()
		go func() {
			defer wg.Done()
			_, _ = service.Transfer(ctx, TransferInput{FromAccountID: b.ID, ToAccountID: a.ID, Amount: decimal.NewFromInt(3)})
		}()
	}
	wg.Wait()

	balanceA := balanceOf(t, service, a.ID)
	balanceB := balanceOf(t, service, b.ID)
	assert.True(t, balanceA.Add(balanceB).Equal(decimal.NewFromInt(2000)))
	assert.True(t, balanceA.Equal(historySum(t, service, a.ID)))
	assert.True(t, balanceB.Equal(historySum(t, service, b.ID)))
	assert.Equal(t, 0, service.locks.size())
}
