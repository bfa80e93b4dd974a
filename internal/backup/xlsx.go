package backup

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/fkhayef/loanbook/internal/ledger"
)

const (
	peopleSheet       = "People"
	transactionsSheet = "Transactions"
	dateLayout        = "2006-01-02"
)

// writeWorkbook renders a snapshot as a workbook with one sheet of people and one of
// transactions
func writeWorkbook(w io.Writer, s ledger.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", peopleSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(transactionsSheet); err != nil {
		return err
	}

	rows := [][]interface{}{{"ID", "Name", "Total loaned", "Total paid", "Balance", "Status"}}
	names := make(map[string]string, len(s.People))
	for _, p := range s.People {
		names[p.ID] = p.Name
		rows = append(rows, []interface{}{
			p.ID,
			p.Name,
			p.TotalLoaned.InexactFloat64(),
			p.TotalPaid.InexactFloat64(),
			p.Balance.InexactFloat64(),
			string(p.Status),
		})
	}
	if err := setRows(f, peopleSheet, rows); err != nil {
		return err
	}

	rows = [][]interface{}{{"ID", "Person", "Date", "Type", "Amount", "Status", "Description", "Installment"}}
	for _, p := range s.People {
		for _, tx := range s.Transactions[p.ID] {
			installment := ""
			if tx.InstallmentCount > 0 {
				installment = fmt.Sprintf("%d/%d", tx.Installment, tx.InstallmentCount)
			}
			rows = append(rows, []interface{}{
				tx.ID,
				names[tx.PersonID],
				tx.Date.Format(dateLayout),
				string(tx.Type),
				tx.Amount.InexactFloat64(),
				string(tx.Status),
				tx.Description,
				installment,
			})
		}
	}
	if err := setRows(f, transactionsSheet, rows); err != nil {
		return err
	}

	return f.Write(w)
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
