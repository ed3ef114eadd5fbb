// Package ledger holds the invariant-bearing inventory mutators. Every operation runs
// in a single transaction: the stock counter update and the ledger row insert (or the
// lock deletion) either both commit or neither does. Stock checks are made with a
// conditional UPDATE so that concurrent sells/locks can never drive a counter negative.
package ledger

import (
	"errors"
	"time"

	"glua-backend/internal/models"

	"gorm.io/gorm"
)

func Sell(db *gorm.DB, drugID, clientID, sellerID uint, quantity float64) (*models.Sale, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var sale models.Sale
	err := db.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, "id = ?", clientID).Error; err != nil {
			return notFoundOr(err)
		}

		drug, err := takeDrugStock(tx, drugID, quantity)
		if err != nil {
			return err
		}

		sale = models.Sale{
			SellerID:          &sellerID,
			DrugSold:          drug.Name,
			BatchNo:           drug.BatchNo,
			ClientID:          &client.ID,
			Quantity:          quantity,
			RemainingQuantity: drug.Stock,
			DateSold:          time.Now(),
		}
		return tx.Create(&sale).Error
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func Lock(db *gorm.DB, drugID, clientID, lockedByID uint, quantity float64) (*models.LockedProduct, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var lock models.LockedProduct
	err := db.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, "id = ?", clientID).Error; err != nil {
			return notFoundOr(err)
		}

		// reserved units leave available stock right away
		drug, err := takeDrugStock(tx, drugID, quantity)
		if err != nil {
			return err
		}

		lock = models.LockedProduct{
			DrugID:     drug.ID,
			LockedByID: lockedByID,
			ClientID:   &client.ID,
			Quantity:   quantity,
			DateLocked: time.Now(),
		}
		return tx.Create(&lock).Error
	})
	if err != nil {
		return nil, err
	}
	return &lock, nil
}

// Fulfill converts a lock into a sale. The stock was already decremented at lock time,
// so the drug counter is not touched.
func Fulfill(db *gorm.DB, lockID, sellerID uint) (*models.Sale, error) {
	var sale models.Sale
	err := db.Transaction(func(tx *gorm.DB) error {
		var lock models.LockedProduct
		if err := tx.Preload("Drug").First(&lock, "id = ?", lockID).Error; err != nil {
			return notFoundOr(err)
		}

		sale = models.Sale{
			SellerID:          &sellerID,
			DrugSold:          lock.Drug.Name,
			BatchNo:           lock.Drug.BatchNo,
			ClientID:          lock.ClientID,
			Quantity:          lock.Quantity,
			RemainingQuantity: lock.Drug.Stock,
			DateSold:          time.Now(),
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}
		return tx.Delete(&lock).Error
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// Unlock cancels a reservation and puts the quantity back on the shelf. Returns the
// resolved lock with its drug preloaded so callers can build messages from it.
func Unlock(db *gorm.DB, lockID uint) (*models.LockedProduct, error) {
	var lock models.LockedProduct
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Drug").First(&lock, "id = ?", lockID).Error; err != nil {
			return notFoundOr(err)
		}

		if err := tx.Model(&models.Drug{}).
			Where("id = ?", lock.DrugID).
			Update("stock", gorm.Expr("stock + ?", lock.Quantity)).Error; err != nil {
			return err
		}
		return tx.Delete(&lock).Error
	})
	if err != nil {
		return nil, err
	}
	return &lock, nil
}

// GuardLockUpdate is the explicit precondition check for any path that would edit a
// lock row: the drug reference of an existing lock can never change.
func GuardLockUpdate(db *gorm.DB, lockID, newDrugID uint) error {
	var lock models.LockedProduct
	if err := db.First(&lock, "id = ?", lockID).Error; err != nil {
		return notFoundOr(err)
	}
	if lock.DrugID != newDrugID {
		return ErrLockImmutable
	}
	return nil
}

func Restock(db *gorm.DB, drugID, staffID uint, supplier string, amount int64) (*models.Stocked, error) {
	if amount <= 0 {
		return nil, ErrInvalidQuantity
	}

	var stocked models.Stocked
	err := db.Transaction(func(tx *gorm.DB) error {
		var drug models.Drug
		if err := tx.First(&drug, "id = ?", drugID).Error; err != nil {
			return notFoundOr(err)
		}

		if err := tx.Model(&models.Drug{}).
			Where("id = ?", drug.ID).
			Update("stock", gorm.Expr("stock + ?", amount)).Error; err != nil {
			return err
		}
		if err := tx.First(&drug, "id = ?", drug.ID).Error; err != nil {
			return err
		}

		stocked = models.Stocked{
			DrugID:      drug.ID,
			StaffID:     staffID,
			Supplier:    Capitalize(supplier),
			NumberAdded: amount,
			Total:       drug.Stock,
			DateAdded:   time.Now(),
		}
		return tx.Create(&stocked).Error
	})
	if err != nil {
		return nil, err
	}
	return &stocked, nil
}

func IssueMarketingItem(db *gorm.DB, itemID uint, issuedTo string, issuedByID uint, quantity int64) (*models.IssuedItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var issued models.IssuedItem
	err := db.Transaction(func(tx *gorm.DB) error {
		var item models.MarketingItem
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			return notFoundOr(err)
		}

		res := tx.Model(&models.MarketingItem{}).
			Where("id = ? AND stock >= ?", item.ID, quantity).
			Update("stock", gorm.Expr("stock - ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}
		if err := tx.First(&item, "id = ?", item.ID).Error; err != nil {
			return err
		}

		issued = models.IssuedItem{
			Item:           item.Name,
			Stock:          item.Stock,
			IssuedTo:       issuedTo,
			QuantityIssued: quantity,
			IssuedByID:     &issuedByID,
			DateIssued:     time.Now(),
		}
		return tx.Create(&issued).Error
	})
	if err != nil {
		return nil, err
	}
	return &issued, nil
}

func IssueCannister(db *gorm.DB, cannisterID, clientID, staffID uint, quantity int64) (*models.IssuedCannister, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var issued models.IssuedCannister
	err := db.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, "id = ?", clientID).Error; err != nil {
			return notFoundOr(err)
		}

		var cannister models.Cannister
		if err := tx.First(&cannister, "id = ?", cannisterID).Error; err != nil {
			return notFoundOr(err)
		}

		res := tx.Model(&models.Cannister{}).
			Where("id = ? AND stock >= ?", cannister.ID, quantity).
			Update("stock", gorm.Expr("stock - ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}
		if err := tx.First(&cannister, "id = ?", cannister.ID).Error; err != nil {
			return err
		}

		issued = models.IssuedCannister{
			Name:          cannister.Name,
			BatchNo:       cannister.BatchNo,
			StaffOnDutyID: staffID,
			ClientID:      &client.ID,
			Quantity:      quantity,
			Balance:       cannister.Stock,
			Returned:      false,
			DateIssued:    time.Now(),
		}
		return tx.Create(&issued).Error
	})
	if err != nil {
		return nil, err
	}
	return &issued, nil
}

// ReturnCannister marks an issuance returned and restores the matching cannister's
// stock. The Issued -> Returned transition happens at most once; a second call fails
// with ErrAlreadyResolved and changes nothing.
func ReturnCannister(db *gorm.DB, issuedID, returnedByID uint) (*models.IssuedCannister, error) {
	var issued models.IssuedCannister
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&issued, "id = ?", issuedID).Error; err != nil {
			return notFoundOr(err)
		}

		now := time.Now()
		// conditional update guards concurrent double returns
		res := tx.Model(&models.IssuedCannister{}).
			Where("id = ? AND returned = ?", issued.ID, false).
			Updates(map[string]interface{}{
				"returned":       true,
				"returned_by_id": returnedByID,
				"date_returned":  now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyResolved
		}

		restore := tx.Model(&models.Cannister{}).
			Where("batch_no = ?", issued.BatchNo).
			Update("stock", gorm.Expr("stock + ?", issued.Quantity))
		if restore.Error != nil {
			return restore.Error
		}
		// no cannister carries the snapshot batch number anymore; a return with
		// nowhere to restock must not resolve the issuance
		if restore.RowsAffected == 0 {
			return ErrNotFound
		}

		issued.Returned = true
		issued.ReturnedByID = &returnedByID
		issued.DateReturned = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &issued, nil
}

// takeDrugStock decrements a drug's stock inside tx after checking availability
// against the current row, and returns the drug with the post-decrement level.
func takeDrugStock(tx *gorm.DB, drugID uint, quantity float64) (*models.Drug, error) {
	var drug models.Drug
	if err := tx.First(&drug, "id = ?", drugID).Error; err != nil {
		return nil, notFoundOr(err)
	}

	res := tx.Model(&models.Drug{}).
		Where("id = ? AND stock >= ?", drug.ID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInsufficientStock
	}

	if err := tx.First(&drug, "id = ?", drug.ID).Error; err != nil {
		return nil, err
	}
	return &drug, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
