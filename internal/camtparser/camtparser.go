// Package camtparser reads ISO 20022 camt.053 account statements. These
// files are machine readable, so no model call is needed: entries map
// directly to raw transactions and feed the same normalization path as
// model output.
package camtparser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/xmlpath.v2"

	"fjacquet/statement-extract/internal/logging"
	"fjacquet/statement-extract/internal/models"
)

var (
	entryPath     = xmlpath.MustCompile("//Ntry")
	amountPath    = xmlpath.MustCompile("Amt")
	cdtDbtPath    = xmlpath.MustCompile("CdtDbtInd")
	bookingPath   = xmlpath.MustCompile("BookgDt/Dt")
	valueDatePath = xmlpath.MustCompile("ValDt/Dt")
	remittance    = xmlpath.MustCompile("NtryDtls/TxDtls/RmtInf/Ustrd")
	addlInfoPath  = xmlpath.MustCompile("AddtlNtryInf")
	creditorPath  = xmlpath.MustCompile("NtryDtls/TxDtls/RltdPties/Cdtr/Nm")
	debtorPath    = xmlpath.MustCompile("NtryDtls/TxDtls/RltdPties/Dbtr/Nm")

	balancePath     = xmlpath.MustCompile("//Bal")
	balanceCodePath = xmlpath.MustCompile("Tp/CdOrPrtry/Cd")
	balanceAmtPath  = xmlpath.MustCompile("Amt")
)

// Detect reports whether data is a camt.053 bank-to-customer statement.
func Detect(data []byte) bool {
	return bytes.Contains(data, []byte("<BkToCstmrStmt"))
}

// Statement is the machine-readable content of a camt.053 file.
type Statement struct {
	Transactions []models.RawTransaction
	Opening      *decimal.Decimal
	Closing      *decimal.Decimal
}

// Parse extracts entries and the opening and closing balances. camt.053
// has no per-entry running balance, so the Balance field stays nil and
// chain verification relies on the opening and closing pair.
func Parse(data []byte, log logging.Logger) (*Statement, error) {
	root, err := xmlpath.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse camt.053 XML: %w", err)
	}

	st := &Statement{}
	st.Opening, st.Closing = parseBalances(root)

	iter := entryPath.Iter(root)
	for iter.Next() {
		entry := iter.Node()
		tx, ok := parseEntry(entry)
		if !ok {
			log.Debug("Skipping camt.053 entry without amount or date")
			continue
		}
		st.Transactions = append(st.Transactions, tx)
	}

	log.WithFields(
		logging.Field{Key: logging.FieldCount, Value: len(st.Transactions)},
	).Info("Parsed camt.053 statement")
	return st, nil
}

func parseEntry(entry *xmlpath.Node) (models.RawTransaction, bool) {
	var tx models.RawTransaction

	amount, ok := amountPath.String(entry)
	if !ok {
		return tx, false
	}
	date, ok := bookingPath.String(entry)
	if !ok {
		date, ok = valueDatePath.String(entry)
		if !ok {
			return tx, false
		}
	}

	tx.Date = strings.TrimSpace(date)
	tx.Amount = strings.TrimSpace(amount)

	tx.Type = string(models.TypeDebit)
	isCredit := false
	if ind, ok := cdtDbtPath.String(entry); ok && strings.TrimSpace(ind) == "CRDT" {
		tx.Type = string(models.TypeCredit)
		isCredit = true
	}

	if desc, ok := remittance.String(entry); ok {
		tx.Description = strings.TrimSpace(desc)
	} else if info, ok := addlInfoPath.String(entry); ok {
		tx.Description = strings.TrimSpace(info)
	}

	// The counterparty is the creditor for outgoing money and the
	// debtor for incoming money.
	partyPath := creditorPath
	if isCredit {
		partyPath = debtorPath
	}
	if name, ok := partyPath.String(entry); ok {
		tx.Merchant = strings.TrimSpace(name)
	}

	// Machine-readable source, full confidence.
	tx.ExtractionConfidence = 1.0
	return tx, true
}

func parseBalances(root *xmlpath.Node) (opening, closing *decimal.Decimal) {
	iter := balancePath.Iter(root)
	for iter.Next() {
		node := iter.Node()
		code, ok := balanceCodePath.String(node)
		if !ok {
			continue
		}
		amtStr, ok := balanceAmtPath.String(node)
		if !ok {
			continue
		}
		amt, err := decimal.NewFromString(strings.TrimSpace(amtStr))
		if err != nil {
			continue
		}
		switch strings.TrimSpace(code) {
		case "OPBD":
			opening = &amt
		case "CLBD":
			closing = &amt
		}
	}
	return opening, closing
}
