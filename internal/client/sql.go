package client

const getAllClientsSQL = `
SELECT client_id, client_name, contact_name, email, notes
FROM client
ORDER BY client_name
`

const getClientSQL = `
SELECT client_id, client_name, contact_name, email, notes
FROM client
WHERE client_id = ?
`

const createClientSQL = `
INSERT INTO client (
    client_name, contact_name, email, notes
) VALUES (?, ?, ?, ?)
`

const updateClientSQL = `
UPDATE client
SET client_name = ?, contact_name = ?, email = ?, notes = ?
WHERE client_id = ?
`

const deleteClientSQL = `
DELETE FROM client
WHERE client_id = ?
`

const clientExistsSQL = `
SELECT EXISTS(
    SELECT 1 FROM client WHERE client_id = ?
)
`
