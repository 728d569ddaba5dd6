package dto

import (
	"github.com/verimetr/verimetr-api/internal/domain"
)

// ToCompany converts a CreateCompanyRequest to a Company domain model
func (r *CreateCompanyRequest) ToCompany() *domain.Company {
	return &domain.Company{
		Name:   r.Name,
		City:   r.City,
		INN:    r.INN,
		Active: true,
	}
}

// ToEmployee converts a CreateEmployeeRequest to an Employee domain model.
// The password hash is filled in by the service layer.
func (r *CreateEmployeeRequest) ToEmployee() *domain.Employee {
	status := r.Status
	if status == "" {
		status = string(domain.StatusVerifier)
	}
	return &domain.Employee{
		CompanyID:   r.CompanyID,
		Email:       r.Email,
		FullName:    r.FullName,
		Status:      status,
		SnilsNumber: r.SnilsNumber,
	}
}

// ToOrder converts a CreateOrderRequest to an Order domain model
func (r *CreateOrderRequest) ToOrder() *domain.Order {
	return &domain.Order{
		CompanyID:   r.CompanyID,
		EmployeeID:  r.EmployeeID,
		Address:     r.Address,
		ClientName:  r.ClientName,
		ClientPhone: r.ClientPhone,
		Comment:     r.Comment,
		ScheduledAt: r.ScheduledAt,
	}
}

// ToVerificationEntry converts a CreateVerificationRequest to a domain model
func (r *CreateVerificationRequest) ToVerificationEntry() *domain.VerificationEntry {
	suitable := true
	if r.Suitable != nil {
		suitable = *r.Suitable
	}
	return &domain.VerificationEntry{
		CompanyID:        r.CompanyID,
		EmployeeID:       r.EmployeeID,
		OrderID:          r.OrderID,
		EquipmentType:    r.EquipmentType,
		SerialNumber:     r.SerialNumber,
		RegistryNumber:   r.RegistryNumber,
		ActSeries:        r.ActSeries,
		ActNumber:        r.ActNumber,
		Suitable:         suitable,
		VerificationDate: r.VerificationDate,
	}
}

// ToBaseTariff converts a CreateBaseTariffRequest to a BaseTariff domain model
func (r *CreateBaseTariffRequest) ToBaseTariff() *domain.BaseTariff {
	durationDays := r.DurationDays
	if durationDays <= 0 {
		durationDays = 30
	}
	return &domain.BaseTariff{
		Title:               r.Title,
		Description:         r.Description,
		DurationDays:        durationDays,
		MaxEmployees:        r.MaxEmployees,
		MaxVerifications:    r.MaxVerifications,
		MaxOrders:           r.MaxOrders,
		AutoManufactureYear: r.AutoManufactureYear,
		AutoTeams:           r.AutoTeams,
		AutoMetrolog:        r.AutoMetrolog,
	}
}

// ToLimitsUpdate maps the request onto the statically-enumerated update
// struct; only flagged fields are carried through.
func (r *UpdateTariffLimitsRequest) ToLimitsUpdate() domain.TariffLimitsUpdate {
	update := domain.TariffLimitsUpdate{
		ValidFrom: r.ValidFrom,
		ValidTo:   r.ValidTo,
	}
	if r.MaxEmployeesSet {
		update.MaxEmployees = domain.OptionalLimit{Set: true, Value: r.MaxEmployees}
	}
	if r.MaxVerificationsSet {
		update.MaxVerifications = domain.OptionalLimit{Set: true, Value: r.MaxVerifications}
	}
	if r.MaxOrdersSet {
		update.MaxOrders = domain.OptionalLimit{Set: true, Value: r.MaxOrders}
	}
	return update
}

// FromCompany converts a Company domain model to a CompanyResponse
func FromCompany(company *domain.Company) *CompanyResponse {
	return &CompanyResponse{
		ID:        company.ID,
		Name:      company.Name,
		City:      company.City,
		INN:       company.INN,
		Active:    company.Active,
		CreatedAt: company.CreatedAt,
		UpdatedAt: company.UpdatedAt,
	}
}

// FromEmployee converts an Employee domain model to an EmployeeResponse
func FromEmployee(employee *domain.Employee) *EmployeeResponse {
	return &EmployeeResponse{
		ID:          employee.ID,
		CompanyID:   employee.CompanyID,
		Email:       employee.Email,
		FullName:    employee.FullName,
		Status:      employee.Status,
		SnilsNumber: employee.SnilsNumber,
		CreatedAt:   employee.CreatedAt,
	}
}

// FromOrder converts an Order domain model to an OrderResponse
func FromOrder(order *domain.Order) *OrderResponse {
	return &OrderResponse{
		ID:          order.ID,
		CompanyID:   order.CompanyID,
		EmployeeID:  order.EmployeeID,
		Address:     order.Address,
		ClientName:  order.ClientName,
		ClientPhone: order.ClientPhone,
		Comment:     order.Comment,
		ScheduledAt: order.ScheduledAt,
		Active:      order.Active,
		CreatedAt:   order.CreatedAt,
	}
}

// FromVerificationEntry converts a VerificationEntry domain model to a response
func FromVerificationEntry(entry *domain.VerificationEntry) *VerificationResponse {
	return &VerificationResponse{
		ID:               entry.ID,
		CompanyID:        entry.CompanyID,
		EmployeeID:       entry.EmployeeID,
		OrderID:          entry.OrderID,
		EquipmentType:    entry.EquipmentType,
		SerialNumber:     entry.SerialNumber,
		RegistryNumber:   entry.RegistryNumber,
		ActSeries:        entry.ActSeries,
		ActNumber:        entry.ActNumber,
		Suitable:         entry.Suitable,
		VerificationDate: entry.VerificationDate,
		ProtocolKey:      entry.ProtocolKey,
		CreatedAt:        entry.CreatedAt,
	}
}

// FromBaseTariff converts a BaseTariff domain model to a BaseTariffResponse
func FromBaseTariff(tariff *domain.BaseTariff) *BaseTariffResponse {
	return &BaseTariffResponse{
		ID:                  tariff.ID,
		Title:               tariff.Title,
		Description:         tariff.Description,
		DurationDays:        tariff.DurationDays,
		MaxEmployees:        tariff.MaxEmployees,
		MaxVerifications:    tariff.MaxVerifications,
		MaxOrders:           tariff.MaxOrders,
		AutoManufactureYear: tariff.AutoManufactureYear,
		AutoTeams:           tariff.AutoTeams,
		AutoMetrolog:        tariff.AutoMetrolog,
		Archived:            tariff.Archived,
	}
}

// FromTariffState converts a TariffState domain model to a TariffStateResponse
func FromTariffState(state *domain.TariffState) *TariffStateResponse {
	return &TariffStateResponse{
		CompanyID:         state.CompanyID,
		Title:             state.Title,
		ValidFrom:         state.ValidFrom,
		ValidTo:           state.ValidTo,
		MaxEmployees:      state.MaxEmployees,
		MaxVerifications:  state.MaxVerifications,
		MaxOrders:         state.MaxOrders,
		UsedEmployees:     state.UsedEmployees,
		UsedVerifications: state.UsedVerifications,
		UsedOrders:        state.UsedOrders,
	}
}

// FromTariffHistory converts a TariffHistory domain model to a response
func FromTariffHistory(history *domain.TariffHistory) TariffHistoryResponse {
	return TariffHistoryResponse{
		ID:                 history.ID,
		CompanyID:          history.CompanyID,
		Title:              history.Title,
		ValidFrom:          history.ValidFrom,
		ValidTo:            history.ValidTo,
		IsActive:           history.IsActive,
		DeactivatedAt:      history.DeactivatedAt,
		DeactivationReason: history.DeactivationReason,
		CreatedAt:          history.CreatedAt,
	}
}
