package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mentorlink/backend/database"
	"github.com/mentorlink/backend/models"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{10.005, 10.01},
		{10.004, 10.0},
		{0, 0},
		{99.999, 100},
		{19.998, 20},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestComputeWalletTotals(t *testing.T) {
	setupTestDB(t)
	mentor := createTestMentor(t, "mentor@example.com")

	createTestPayment(t, mentor.ID, 200, "succeeded")
	createTestPayment(t, mentor.ID, 40, "pending")
	createTestPayment(t, mentor.ID, 75, "failed")

	if err := database.DB.Create(&models.PayoutRequest{
		MentorID: mentor.ID, Amount: 50, PlatformFee: 10, NetAmount: 40, Status: "completed",
	}).Error; err != nil {
		t.Fatalf("failed to seed payout: %v", err)
	}
	if err := database.DB.Create(&models.PayoutRequest{
		MentorID: mentor.ID, Amount: 60, PlatformFee: 12, NetAmount: 48, Status: "pending",
	}).Error; err != nil {
		t.Fatalf("failed to seed payout: %v", err)
	}

	totals, err := ComputeWalletTotals(database.DB, mentor.ID)
	if err != nil {
		t.Fatalf("ComputeWalletTotals: %v", err)
	}

	if totals.AvailableBalance != 90 {
		t.Errorf("available = %v, want 90", totals.AvailableBalance)
	}
	if totals.TotalWithdrawn != 50 {
		t.Errorf("withdrawn = %v, want 50", totals.TotalWithdrawn)
	}
	if totals.PendingEarnings != 40 {
		t.Errorf("pending earnings = %v, want 40", totals.PendingEarnings)
	}
}

func TestReconcileWalletPersistsDrift(t *testing.T) {
	setupTestDB(t)
	mentor := createTestMentor(t, "mentor@example.com")
	createTestPayment(t, mentor.ID, 120, "succeeded")

	// Cache starts at zero, so the first reconcile must write through.
	totals, err := ReconcileWallet(mentor.ID)
	if err != nil {
		t.Fatalf("ReconcileWallet: %v", err)
	}
	if totals.AvailableBalance != 120 {
		t.Fatalf("available = %v, want 120", totals.AvailableBalance)
	}

	var profile models.MentorProfile
	if err := database.DB.First(&profile, "user_id = ?", mentor.ID).Error; err != nil {
		t.Fatalf("failed to load profile: %v", err)
	}
	if profile.AvailableBalance != 120 {
		t.Errorf("cached balance = %v, want 120", profile.AvailableBalance)
	}

	// Recompute is stable with no intervening mutation.
	again, err := ReconcileWallet(mentor.ID)
	if err != nil {
		t.Fatalf("second ReconcileWallet: %v", err)
	}
	if again != totals {
		t.Errorf("second reconcile = %+v, want %+v", again, totals)
	}
}

func TestReconcileWalletDropsStaleWrite(t *testing.T) {
	setupTestDB(t)
	mentor := createTestMentor(t, "mentor@example.com")
	createTestPayment(t, mentor.ID, 200, "succeeded")

	// Snapshot the cache the way a reconcile in flight would see it.
	var observed models.MentorProfile
	if err := database.DB.First(&observed, "user_id = ?", mentor.ID).Error; err != nil {
		t.Fatalf("failed to load profile: %v", err)
	}

	// A payout lock lands after the snapshot was taken.
	if err := database.DB.Model(&models.MentorProfile{}).
		Where("user_id = ?", mentor.ID).
		Update("available_balance", 120).Error; err != nil {
		t.Fatalf("failed to apply concurrent decrement: %v", err)
	}

	// The stale reconcile must not clobber the newer cache value.
	err := persistWalletCache(database.DB, mentor.ID, &observed, WalletTotals{AvailableBalance: 200})
	if err != nil {
		t.Fatalf("persistWalletCache: %v", err)
	}

	var profile models.MentorProfile
	if err := database.DB.First(&profile, "user_id = ?", mentor.ID).Error; err != nil {
		t.Fatalf("failed to reload profile: %v", err)
	}
	if profile.AvailableBalance != 120 {
		t.Errorf("cached balance = %v, want 120 (stale write applied)", profile.AvailableBalance)
	}

	// A reconcile that observed the current values converges the cache
	// back to the ledger.
	totals, err := ReconcileWallet(mentor.ID)
	if err != nil {
		t.Fatalf("ReconcileWallet: %v", err)
	}
	if totals.AvailableBalance != 200 {
		t.Fatalf("ledger available = %v, want 200", totals.AvailableBalance)
	}
	if err := database.DB.First(&profile, "user_id = ?", mentor.ID).Error; err != nil {
		t.Fatalf("failed to reload profile: %v", err)
	}
	if profile.AvailableBalance != 200 {
		t.Errorf("cached balance = %v, want 200 after fresh reconcile", profile.AvailableBalance)
	}
}

func TestReconcileWalletUnknownMentor(t *testing.T) {
	setupTestDB(t)

	_, err := ReconcileWallet(uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRequestWithdrawalBelowMinimum(t *testing.T) {
	setupTestDB(t)
	mentor := createTestMentor(t, "mentor@example.com")
	method := createTestPayoutMethod(t, mentor.ID)

	_, err := RequestWithdrawal(mentor.ID, 49.99, method.ID)
	if !errors.Is(err, ErrBelowMinimumWithdrawal) {
		t.Fatalf("err = %v, want ErrBelowMinimumWithdrawal", err)
	}
}

func TestRequestWithdrawalUnknownMethod(t *testing.T) {
	setupTestDB(t)
	mentor := createTestMentor(t, "mentor@example.com")
	createTestPayment(t, mentor.ID, 200, "succeeded")

	_, err := RequestWithdrawal(mentor.ID, 100, uuid.New())
	if !errors.Is(err, ErrMethodNotFound) {
		t.Fatalf("err = %v, want ErrMethodNotFound", err)
	}
}

func TestRequestWithdrawalLocksFundsAndComputesFee(t *testing.T) {
	setupTestDB(t)
	mentor := createTestMentor(t, "mentor@example.com")
	method := createTestPayoutMethod(t, mentor.ID)
	createTestPayment(t, mentor.ID, 200, "succeeded")

	request, err := RequestWithdrawal(mentor.ID, 100, method.ID)
	if err != nil {
		t.Fatalf("RequestWithdrawal: %v", err)
	}

	if request.PlatformFee != 20 {
		t.Errorf("fee = %v, want 20", request.PlatformFee)
	}
	if request.NetAmount != 80 {
		t.Errorf("net = %v, want 80", request.NetAmount)
	}
	if request.Status != "pending" {
		t.Errorf("status = %q, want pending", request.Status)
	}

	var snapshot models.PayoutMethodSnapshot
	if err := json.Unmarshal(request.MethodSnapshot, &snapshot); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snapshot.AccountNumber != method.AccountNumber {
		t.Errorf("snapshot account = %q, want %q", snapshot.AccountNumber, method.AccountNumber)
	}

	totals, err := ReconcileWallet(mentor.ID)
	if err != nil {
		t.Fatalf("ReconcileWallet: %v", err)
	}
	if totals.AvailableBalance != 100 {
		t.Errorf("available after lock = %v, want 100", totals.AvailableBalance)
	}

	// The remaining balance cannot cover another 150.
	_, err = RequestWithdrawal(mentor.ID, 150, method.ID)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
}

func TestWithdrawalSnapshotSurvivesMethodEdits(t *testing.T) {
	setupTestDB(t)
	mentor := createTestMentor(t, "mentor@example.com")
	method := createTestPayoutMethod(t, mentor.ID)
	createTestPayment(t, mentor.ID, 200, "succeeded")

	request, err := RequestWithdrawal(mentor.ID, 100, method.ID)
	if err != nil {
		t.Fatalf("RequestWithdrawal: %v", err)
	}

	method.AccountNumber = "9999999999"
	if err := database.DB.Save(method).Error; err != nil {
		t.Fatalf("failed to edit method: %v", err)
	}

	var reloaded models.PayoutRequest
	if err := database.DB.First(&reloaded, "id = ?", request.ID).Error; err != nil {
		t.Fatalf("failed to reload request: %v", err)
	}
	var snapshot models.PayoutMethodSnapshot
	if err := json.Unmarshal(reloaded.MethodSnapshot, &snapshot); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snapshot.AccountNumber != "1234567890" {
		t.Errorf("snapshot account = %q, want the value at request time", snapshot.AccountNumber)
	}
}

func TestCompletePayout(t *testing.T) {
	setupTestDB(t)
	mentor := createTestMentor(t, "mentor@example.com")
	method := createTestPayoutMethod(t, mentor.ID)
	createTestPayment(t, mentor.ID, 200, "succeeded")
	admin := createTestUser(t, "admin@example.com", "password123", "admin")

	request, err := RequestWithdrawal(mentor.ID, 100, method.ID)
	if err != nil {
		t.Fatalf("RequestWithdrawal: %v", err)
	}

	completed, err := CompletePayout(request.ID, admin.ID, "https://receipts.example.com/1.pdf", "wired")
	if err != nil {
		t.Fatalf("CompletePayout: %v", err)
	}
	if completed.Status != "completed" {
		t.Errorf("status = %q, want completed", completed.Status)
	}
	if completed.ProcessedAt == nil {
		t.Error("ProcessedAt not set")
	}

	totals, err := ReconcileWallet(mentor.ID)
	if err != nil {
		t.Fatalf("ReconcileWallet: %v", err)
	}
	if totals.AvailableBalance != 100 {
		t.Errorf("available = %v, want 100", totals.AvailableBalance)
	}
	if totals.TotalWithdrawn != 100 {
		t.Errorf("withdrawn = %v, want 100", totals.TotalWithdrawn)
	}

	_, err = CompletePayout(request.ID, admin.ID, "https://receipts.example.com/1.pdf", "again")
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("err = %v, want ErrAlreadyCompleted", err)
	}
}

func TestRejectPayoutReturnsFunds(t *testing.T) {
	setupTestDB(t)
	mentor := createTestMentor(t, "mentor@example.com")
	method := createTestPayoutMethod(t, mentor.ID)
	createTestPayment(t, mentor.ID, 200, "succeeded")
	admin := createTestUser(t, "admin@example.com", "password123", "admin")

	request, err := RequestWithdrawal(mentor.ID, 100, method.ID)
	if err != nil {
		t.Fatalf("RequestWithdrawal: %v", err)
	}

	rejected, err := RejectPayout(request.ID, admin.ID, "account details did not match")
	if err != nil {
		t.Fatalf("RejectPayout: %v", err)
	}
	if rejected.Status != "rejected" {
		t.Errorf("status = %q, want rejected", rejected.Status)
	}

	totals, err := ReconcileWallet(mentor.ID)
	if err != nil {
		t.Fatalf("ReconcileWallet: %v", err)
	}
	if totals.AvailableBalance != 200 {
		t.Errorf("available = %v, want 200 after refund", totals.AvailableBalance)
	}

	// Rejected is terminal.
	_, err = RejectPayout(request.ID, admin.ID, "again")
	if !errors.Is(err, ErrInvalidPayoutState) {
		t.Fatalf("err = %v, want ErrInvalidPayoutState", err)
	}
}

func TestMarkPayoutProcessing(t *testing.T) {
	setupTestDB(t)
	mentor := createTestMentor(t, "mentor@example.com")
	method := createTestPayoutMethod(t, mentor.ID)
	createTestPayment(t, mentor.ID, 200, "succeeded")
	admin := createTestUser(t, "admin@example.com", "password123", "admin")

	request, err := RequestWithdrawal(mentor.ID, 100, method.ID)
	if err != nil {
		t.Fatalf("RequestWithdrawal: %v", err)
	}

	processing, err := MarkPayoutProcessing(request.ID, admin.ID)
	if err != nil {
		t.Fatalf("MarkPayoutProcessing: %v", err)
	}
	if processing.Status != "processing" {
		t.Errorf("status = %q, want processing", processing.Status)
	}

	_, err = MarkPayoutProcessing(request.ID, admin.ID)
	if !errors.Is(err, ErrInvalidPayoutState) {
		t.Fatalf("err = %v, want ErrInvalidPayoutState", err)
	}

	// A processing request can still be completed or rejected.
	if _, err := CompletePayout(request.ID, admin.ID, "https://receipts.example.com/2.pdf", ""); err != nil {
		t.Fatalf("CompletePayout after processing: %v", err)
	}
}
